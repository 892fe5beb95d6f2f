package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
)

// ExportResult contains all data from a full export operation.
type ExportResult struct {
	Snapshot *models.Snapshot             // Captured topology document
	Statuses map[string]models.SyncStatus // Observed sync status per team slug
	Warnings []string                     // Non-fatal failures encountered
}

// Export captures the source organization's team topology into a snapshot.
//
// The team enumeration is the only fatal call. Per-team failures (sync probe,
// member listing, role lookup) degrade to warnings so one broken team never
// loses the rest of the organization. A canceled context stops the loop with
// one warning and returns the partial result.
func (e *TeamEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, org string, mode models.ExportMode) (*ExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}

	result := &ExportResult{
		Snapshot: &models.Snapshot{ExportMode: mode},
		Statuses: make(map[string]models.SyncStatus),
	}

	e.sendProgress(progress, fetchTeamsUpdate())

	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	teams, err := e.source.ListTeams(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list teams for %s: %v", shared.ErrAPIRequest, org, err)
	}

	total := len(teams)
	for i, team := range teams {
		if err := ctx.Err(); err != nil {
			e.warn(progress, result, fmt.Sprintf("export canceled after %d of %d teams: %v", i, total, err))
			break
		}

		e.sendProgress(progress, exportTeamUpdate(i+1, total, team))

		result.Snapshot.AddTeam(team)

		status, groups := e.probeSyncStatus(ctx, progress, result, org, team.Slug)
		result.Statuses[team.Slug] = status

		capture := Resolve(mode, status)

		if capture.IdP && len(groups) > 0 {
			result.Snapshot.AddIdPGroups(models.IdPGroupMapping{
				Team:   team.Slug,
				Groups: groups,
			})
		}

		if capture.Members {
			e.exportMembers(ctx, progress, result, org, team.Slug, i+1, total)
		}
	}

	return result, nil
}

// probeSyncStatus queries a team's identity-provider mappings and classifies
// the sync state. An absent mapping endpoint means sync is simply not in use;
// any other failure leaves the state unknown, which the resolver treats like
// disabled so membership capture proceeds.
func (e *TeamEngine) probeSyncStatus(ctx context.Context, progress chan<- ProgressUpdate, result *ExportResult, org, slug string) (models.SyncStatus, []models.IdPGroup) {
	if err := e.wait(ctx); err != nil {
		e.warn(progress, result, fmt.Sprintf("%s: sync probe canceled: %v", slug, err))
		return models.SyncUnknown, nil
	}

	groups, err := e.source.TeamIdPGroups(ctx, org, slug)
	if err != nil {
		if errors.Is(err, shared.ErrTeamNotFound) {
			return models.SyncDisabled, nil
		}
		e.warn(progress, result, fmt.Sprintf("%s: could not determine sync status: %v", slug, err))
		return models.SyncUnknown, nil
	}

	if len(groups) == 0 {
		return models.SyncDisabled, nil
	}
	return models.SyncEnabled, groups
}

// exportMembers captures a team's membership records, looking up each member's
// role individually. A failed role lookup records the member with the default
// role rather than dropping them. Cancellation ends the loop after a single
// warning, leaving the members captured so far in place.
func (e *TeamEngine) exportMembers(ctx context.Context, progress chan<- ProgressUpdate, result *ExportResult, org, slug string, step, total int) {
	if err := e.wait(ctx); err != nil {
		e.warn(progress, result, fmt.Sprintf("%s: member listing canceled: %v", slug, err))
		return
	}

	logins, err := e.source.ListTeamMembers(ctx, org, slug)
	if err != nil {
		e.warn(progress, result, fmt.Sprintf("%s: failed to list members: %v", slug, err))
		return
	}

	e.sendProgress(progress, exportMembersUpdate(step, total, slug, len(logins)))

	for _, login := range logins {
		if err := e.wait(ctx); err != nil {
			e.warn(progress, result, fmt.Sprintf("%s: member export canceled: %v", slug, err))
			return
		}

		role := models.RoleMember
		if r, err := e.source.TeamRole(ctx, org, slug, login); err != nil {
			e.warn(progress, result, fmt.Sprintf("%s: failed to resolve role for %s, assuming member: %v", slug, login, err))
		} else {
			role = r
		}

		result.Snapshot.AddMemberships(models.Membership{
			Team:     slug,
			Username: login,
			Role:     role,
		})
	}
}

// warn records a non-fatal failure on the result and surfaces it as progress.
func (e *TeamEngine) warn(progress chan<- ProgressUpdate, result *ExportResult, msg string) {
	result.Warnings = append(result.Warnings, msg)
	e.sendProgress(progress, warnUpdate(msg))
}
