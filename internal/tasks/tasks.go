// package tasks implements the two migration phases for organization team topologies.
//
// The core abstraction is Engine, which orchestrates exports (source organization
// to snapshot document) and mirrors (snapshot document to target organization).
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/services"
	"golang.org/x/time/rate"
)

// Engine defines the migration operations between two organization instances.
type Engine interface {
	// Export captures the source organization's team topology into a snapshot by
	// enumerating teams, probing identity-provider sync state, and collecting memberships.
	Export(ctx context.Context, progress chan<- ProgressUpdate, org string, mode models.ExportMode) (*ExportResult, error)

	// Mirror replays a snapshot against the target organization by materializing
	// the team hierarchy, reporting identity-provider mappings, and replaying memberships.
	Mirror(ctx context.Context, progress chan<- ProgressUpdate, org string, snap *models.Snapshot, mode models.MirrorMode) (*MirrorResult, error)
}

// TeamEngine implements Engine for team topology operations.
// Contains dependencies on the source and target instance services.
type TeamEngine struct {
	source  services.Service
	target  services.Service
	limiter *rate.Limiter
}

// EngineOpts configures optional engine behavior.
type EngineOpts struct {
	// RequestsPerSecond paces sequential remote calls. Zero disables pacing.
	RequestsPerSecond float64
}

// NewTeamEngine creates a TeamEngine with the provided services. Either service
// may be nil when only one phase will run.
func NewTeamEngine(source, target services.Service, opts EngineOpts) *TeamEngine {
	engine := &TeamEngine{
		source: source,
		target: target,
	}
	if opts.RequestsPerSecond > 0 {
		engine.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return engine
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TeamEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// wait paces the next remote call when a limiter is configured.
func (e *TeamEngine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}
