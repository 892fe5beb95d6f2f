package models

import (
	"fmt"
	"time"
)

// RunKind distinguishes export runs from mirror runs in the history database.
type RunKind string

const (
	RunExport RunKind = "export"
	RunMirror RunKind = "mirror"
)

// Run records one export or mirror invocation: the organization it targeted,
// the mode it ran under, the entity counts it processed, and its timing.
// Implements [Model].
type Run struct {
	id          string
	sequence    int
	kind        RunKind
	org         string
	mode        string
	teams       int
	memberships int
	idpGroups   int
	warnings    int
	startedAt   time.Time
	completedAt time.Time
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewRun creates a Run for an invocation starting now.
func NewRun(kind RunKind, org, mode string) *Run {
	now := time.Now()
	return &Run{
		kind:      kind,
		org:       org,
		mode:      mode,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string { return r.id }

func (r *Run) Sequence() int { return r.sequence }

func (r *Run) Kind() RunKind { return r.kind }

func (r *Run) Org() string { return r.org }

func (r *Run) Mode() string { return r.mode }

func (r *Run) Teams() int { return r.teams }

func (r *Run) Memberships() int { return r.memberships }

func (r *Run) IdPGroups() int { return r.idpGroups }

func (r *Run) Warnings() int { return r.warnings }

func (r *Run) StartedAt() time.Time { return r.startedAt }

func (r *Run) CompletedAt() time.Time { return r.completedAt }

func (r *Run) CreatedAt() time.Time { return r.createdAt }

func (r *Run) UpdatedAt() time.Time { return r.updatedAt }

func (r *Run) DeletedAt() *time.Time { return r.deletedAt }

func (r *Run) SetID(id string) { r.id = id }

func (r *Run) SetSequence(seq int) { r.sequence = seq }

func (r *Run) SetStartedAt(t time.Time) { r.startedAt = t }

func (r *Run) SetCompletedAt(t time.Time) { r.completedAt = t }

func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }

func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }

func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetCounts records the entity counts processed by the run.
func (r *Run) SetCounts(teams, memberships, idpGroups, warnings int) {
	r.teams = teams
	r.memberships = memberships
	r.idpGroups = idpGroups
	r.warnings = warnings
}

// Complete marks the run finished now.
func (r *Run) Complete() {
	now := time.Now()
	r.completedAt = now
	r.updatedAt = now
}

// Validate checks that the run has a valid kind and a target organization.
func (r *Run) Validate() error {
	switch r.kind {
	case RunExport, RunMirror:
	default:
		return fmt.Errorf("invalid run kind %q", r.kind)
	}
	if r.org == "" {
		return fmt.Errorf("run organization cannot be empty")
	}
	if r.mode == "" {
		return fmt.Errorf("run mode cannot be empty")
	}
	return nil
}
