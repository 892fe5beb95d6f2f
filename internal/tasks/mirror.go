package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
)

// MirrorResult contains all data from a full mirror operation.
type MirrorResult struct {
	EffectiveMode     models.ExportMode        // Mode after auto resolution
	Created           []string                 // Team slugs created on the target
	Updated           []string                 // Team slugs updated on the target
	Skipped           []string                 // Team slugs skipped with a warning
	MembershipsAdded  int                      // Membership upserts that succeeded
	MembershipsFailed int                      // Membership upserts that failed
	IdPMappings       []models.IdPGroupMapping // Mappings to bind manually on the target
	Warnings          []string                 // Non-fatal failures encountered
}

// Mirror replays a snapshot against the target organization in three steps:
// materialize the team hierarchy, report identity-provider mappings for manual
// binding, and replay manual memberships. The mode gates the last two steps.
//
// A cyclic parent chain in the snapshot is fatal; everything else degrades to
// per-item warnings.
func (e *TeamEngine) Mirror(ctx context.Context, progress chan<- ProgressUpdate, org string, snap *models.Snapshot, mode models.MirrorMode) (*MirrorResult, error) {
	if e.target == nil {
		return nil, fmt.Errorf("%w: target service not initialized", shared.ErrServiceUnavailable)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot to mirror", shared.ErrSnapshotMissing)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result := &MirrorResult{EffectiveMode: mode.Effective(snap.ExportMode)}

	order, err := CreationOrder(snap.Teams)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(order))
	total := len(order)

	for i, team := range order {
		e.materializeTeam(ctx, progress, result, ids, org, team, i+1, total)
	}

	steps := MirrorSteps(result.EffectiveMode)

	if steps.IdP {
		result.IdPMappings = snap.IdPGroups
		for i, mapping := range snap.IdPGroups {
			e.sendProgress(progress, reportIdPUpdate(i+1, len(snap.IdPGroups), mapping))
		}
	}

	if steps.Members {
		e.replayMemberships(ctx, progress, result, org, snap.Memberships)
	}

	return result, nil
}

// materializeTeam creates or updates one team on the target. Parentless teams
// fall back to an update when creation fails, so re-running a mirror converges
// instead of erroring. Child teams have no update fallback: a failed child
// creation usually means the team already exists, and is reported as a skip.
func (e *TeamEngine) materializeTeam(ctx context.Context, progress chan<- ProgressUpdate, result *MirrorResult, ids map[string]int64, org string, team models.Team, step, total int) {
	if err := e.wait(ctx); err != nil {
		e.skipTeam(progress, result, team.Slug, step, total, err)
		return
	}

	if !team.HasParent() {
		created, err := e.target.CreateTeam(ctx, org, team, 0)
		if err == nil {
			ids[team.Slug] = created.ID
			result.Created = append(result.Created, team.Slug)
			e.sendProgress(progress, createTeamUpdate(step, total, team.Slug))
			return
		}

		updated, updateErr := e.target.UpdateTeam(ctx, org, team)
		if updateErr != nil {
			e.skipTeam(progress, result, team.Slug, step, total,
				fmt.Errorf("create failed (%v), update failed (%v)", err, updateErr))
			return
		}

		ids[team.Slug] = updated.ID
		result.Updated = append(result.Updated, team.Slug)
		e.sendProgress(progress, updateTeamUpdate(step, total, team.Slug))
		return
	}

	parentID, ok := ids[team.Parent]
	if !ok {
		remote, err := e.target.TeamBySlug(ctx, org, team.Parent)
		if err != nil {
			e.skipTeam(progress, result, team.Slug, step, total,
				fmt.Errorf("parent %q not found on target: %v", team.Parent, err))
			return
		}
		parentID = remote.ID
		ids[team.Parent] = parentID
	}

	created, err := e.target.CreateTeam(ctx, org, team, parentID)
	if err != nil {
		e.skipTeam(progress, result, team.Slug, step, total,
			fmt.Errorf("create failed, team may already exist: %v", err))
		return
	}

	ids[team.Slug] = created.ID
	result.Created = append(result.Created, team.Slug)
	e.sendProgress(progress, createTeamUpdate(step, total, team.Slug))
}

// replayMemberships upserts each recorded membership on the target. Upserts are
// idempotent on the remote side, so replays converge; individual failures are
// counted and reported as warnings.
func (e *TeamEngine) replayMemberships(ctx context.Context, progress chan<- ProgressUpdate, result *MirrorResult, org string, memberships []models.Membership) {
	total := len(memberships)

	for i, m := range memberships {
		e.sendProgress(progress, replayMembershipUpdate(i+1, total, m))

		if err := e.wait(ctx); err != nil {
			result.MembershipsFailed++
			e.warnMirror(progress, result, fmt.Sprintf("membership %s in %s canceled: %v", m.Username, m.Team, err))
			continue
		}

		if err := e.target.UpsertMembership(ctx, org, m.Team, m.Username, m.Role); err != nil {
			result.MembershipsFailed++
			e.warnMirror(progress, result, fmt.Sprintf("failed to add %s to %s: %v", m.Username, m.Team, err))
			continue
		}

		result.MembershipsAdded++
	}
}

func (e *TeamEngine) skipTeam(progress chan<- ProgressUpdate, result *MirrorResult, slug string, step, total int, err error) {
	result.Skipped = append(result.Skipped, slug)
	result.Warnings = append(result.Warnings, fmt.Sprintf("skipped team %s: %v", slug, err))
	e.sendProgress(progress, skipTeamUpdate(step, total, slug, err))
}

func (e *TeamEngine) warnMirror(progress chan<- ProgressUpdate, result *MirrorResult, msg string) {
	result.Warnings = append(result.Warnings, msg)
	e.sendProgress(progress, warnUpdate(msg))
}

// CreationOrder sorts teams so every parent precedes its children, with all
// parentless teams first and input order preserved among peers. Teams whose
// parent slug is absent from the set sort as roots; their parent is resolved
// against the target at materialization time. A cyclic parent chain is
// unsatisfiable and returns an error wrapping shared.ErrCyclicHierarchy.
func CreationOrder(teams []models.Team) ([]models.Team, error) {
	position := make(map[string]int, len(teams))
	for i, t := range teams {
		position[t.Slug] = i
	}

	indegree := make(map[string]int, len(teams))
	children := make(map[string][]string)

	for _, t := range teams {
		if t.HasParent() {
			if _, inSet := position[t.Parent]; inSet {
				indegree[t.Slug]++
				children[t.Parent] = append(children[t.Parent], t.Slug)
			}
		}
	}

	var queue []string
	for _, t := range teams {
		if indegree[t.Slug] == 0 {
			queue = append(queue, t.Slug)
		}
	}

	ordered := make([]models.Team, 0, len(teams))
	for len(queue) > 0 {
		slug := queue[0]
		queue = queue[1:]

		ordered = append(ordered, teams[position[slug]])

		for _, child := range children[slug] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(ordered) < len(teams) {
		var remaining []string
		for _, t := range teams {
			if indegree[t.Slug] > 0 {
				remaining = append(remaining, t.Slug)
			}
		}
		sort.Strings(remaining)
		return nil, fmt.Errorf("%w: %s", shared.ErrCyclicHierarchy, strings.Join(remaining, ", "))
	}

	return ordered, nil
}
