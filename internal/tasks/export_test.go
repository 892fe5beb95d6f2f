package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
	libtest "github.com/desertthunder/teammirror/internal/testing"
)

func syncedSource() *libtest.MockService {
	return &libtest.MockService{
		ListTeamsFunc: func(ctx context.Context, org string) ([]models.Team, error) {
			return []models.Team{
				{Slug: "platform", Name: "Platform", Privacy: models.PrivacyClosed},
				{Slug: "security", Name: "Security", Privacy: models.PrivacySecret},
			}, nil
		},
		TeamIdPGroupsFunc: func(ctx context.Context, org, slug string) ([]models.IdPGroup, error) {
			if slug == "security" {
				return []models.IdPGroup{{GroupName: "sec-eng", GroupID: "g-1"}}, nil
			}
			return nil, nil
		},
		ListTeamMembersFunc: func(ctx context.Context, org, slug string) ([]string, error) {
			if slug == "platform" {
				return []string{"alice", "bob"}, nil
			}
			return []string{"carol"}, nil
		},
		TeamRoleFunc: func(ctx context.Context, org, slug, username string) (models.Role, error) {
			if username == "alice" {
				return models.RoleMaintainer, nil
			}
			return models.RoleMember, nil
		},
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("nil source service fails", func(t *testing.T) {
		engine := NewTeamEngine(nil, &libtest.MockService{}, EngineOpts{})
		if _, err := engine.Export(ctx, nil, "acme", models.ExportAll); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("team listing failure is fatal", func(t *testing.T) {
		source := &libtest.MockService{
			ListTeamsFunc: func(ctx context.Context, org string) ([]models.Team, error) {
				return nil, fmt.Errorf("boom")
			},
		}
		engine := NewTeamEngine(source, nil, EngineOpts{})
		if _, err := engine.Export(ctx, nil, "acme", models.ExportAll); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("all mode skips members of synced teams", func(t *testing.T) {
		engine := NewTeamEngine(syncedSource(), nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportAll)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		snap := result.Snapshot
		if len(snap.Teams) != 2 {
			t.Fatalf("expected 2 teams, got %d", len(snap.Teams))
		}
		if snap.ExportMode != models.ExportAll {
			t.Errorf("expected recorded mode all, got %s", snap.ExportMode)
		}

		if got := snap.MembershipsFor("platform"); len(got) != 2 {
			t.Errorf("expected 2 platform memberships, got %d", len(got))
		}
		if got := snap.MembershipsFor("security"); len(got) != 0 {
			t.Errorf("synced team should have no memberships, got %d", len(got))
		}

		if len(snap.IdPGroups) != 1 || snap.IdPGroups[0].Team != "security" {
			t.Errorf("expected one mapping for security, got %+v", snap.IdPGroups)
		}

		if result.Statuses["security"] != models.SyncEnabled {
			t.Errorf("expected security sync enabled, got %s", result.Statuses["security"])
		}
		if result.Statuses["platform"] != models.SyncDisabled {
			t.Errorf("expected platform sync disabled, got %s", result.Statuses["platform"])
		}
	})

	t.Run("maintainer role is preserved", func(t *testing.T) {
		engine := NewTeamEngine(syncedSource(), nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportAll)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		for _, m := range result.Snapshot.Memberships {
			want := models.RoleMember
			if m.Username == "alice" {
				want = models.RoleMaintainer
			}
			if m.Role != want {
				t.Errorf("%s role = %s, want %s", m.Username, m.Role, want)
			}
		}
	})

	t.Run("teams-only mode captures structure only", func(t *testing.T) {
		source := syncedSource()
		engine := NewTeamEngine(source, nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportTeamsOnly)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if len(result.Snapshot.Memberships) != 0 || len(result.Snapshot.IdPGroups) != 0 {
			t.Errorf("teams-only snapshot should be bare, got %+v", result.Snapshot)
		}
		for _, call := range source.Calls() {
			if strings.HasPrefix(call, "ListTeamMembers") {
				t.Errorf("teams-only export should not list members, saw %q", call)
			}
		}
	})

	t.Run("sync probe failure degrades to unknown and keeps members", func(t *testing.T) {
		source := syncedSource()
		source.TeamIdPGroupsFunc = func(ctx context.Context, org, slug string) ([]models.IdPGroup, error) {
			return nil, fmt.Errorf("gateway timeout")
		}
		engine := NewTeamEngine(source, nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportAll)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if result.Statuses["security"] != models.SyncUnknown {
			t.Errorf("expected unknown status, got %s", result.Statuses["security"])
		}
		if got := result.Snapshot.MembershipsFor("security"); len(got) != 1 {
			t.Errorf("unknown sync status should still capture members, got %d", len(got))
		}
		if len(result.Warnings) == 0 {
			t.Error("expected a warning for the failed probe")
		}
	})

	t.Run("absent mapping endpoint means sync disabled", func(t *testing.T) {
		source := syncedSource()
		source.TeamIdPGroupsFunc = func(ctx context.Context, org, slug string) ([]models.IdPGroup, error) {
			return nil, fmt.Errorf("%w: GET group-mappings", shared.ErrTeamNotFound)
		}
		engine := NewTeamEngine(source, nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportAll)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if result.Statuses["security"] != models.SyncDisabled {
			t.Errorf("expected disabled status, got %s", result.Statuses["security"])
		}
		if len(result.Warnings) != 0 {
			t.Errorf("absent endpoint should not warn, got %v", result.Warnings)
		}
	})

	t.Run("member listing failure warns and continues", func(t *testing.T) {
		source := syncedSource()
		source.ListTeamMembersFunc = func(ctx context.Context, org, slug string) ([]string, error) {
			if slug == "platform" {
				return nil, fmt.Errorf("forbidden")
			}
			return []string{"carol"}, nil
		}
		engine := NewTeamEngine(source, nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportMembersOnly)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if got := result.Snapshot.MembershipsFor("platform"); len(got) != 0 {
			t.Errorf("failed listing should capture nothing, got %d", len(got))
		}
		if got := result.Snapshot.MembershipsFor("security"); len(got) != 1 {
			t.Errorf("other teams should still export, got %d", len(got))
		}
		if len(result.Warnings) != 1 {
			t.Errorf("expected 1 warning, got %v", result.Warnings)
		}
	})

	t.Run("role lookup failure defaults to member", func(t *testing.T) {
		source := syncedSource()
		source.TeamRoleFunc = func(ctx context.Context, org, slug, username string) (models.Role, error) {
			return "", fmt.Errorf("rate limited")
		}
		engine := NewTeamEngine(source, nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportMembersOnly)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		for _, m := range result.Snapshot.Memberships {
			if m.Role != models.RoleMember {
				t.Errorf("%s role = %s, want fallback member", m.Username, m.Role)
			}
		}
		if len(result.Warnings) != 3 {
			t.Errorf("expected 3 warnings, got %d", len(result.Warnings))
		}
	})

	t.Run("canceled context ends the team loop with one warning", func(t *testing.T) {
		source := syncedSource()
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewTeamEngine(source, nil, EngineOpts{})
		result, err := engine.Export(canceled, nil, "acme", models.ExportAll)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if len(result.Warnings) != 1 {
			t.Errorf("expected a single cancellation warning, got %v", result.Warnings)
		}
		if len(result.Snapshot.Teams) != 0 {
			t.Errorf("expected no teams after cancellation, got %d", len(result.Snapshot.Teams))
		}
		for _, call := range source.Calls() {
			if strings.HasPrefix(call, "ListTeamMembers") {
				t.Errorf("canceled export should not list members, saw %q", call)
			}
		}
	})

	t.Run("cancellation during member export warns once and stops", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		source := syncedSource()
		source.ListTeamsFunc = func(ctx context.Context, org string) ([]models.Team, error) {
			return []models.Team{{Slug: "platform", Name: "Platform"}}, nil
		}
		source.ListTeamMembersFunc = func(ctx context.Context, org, slug string) ([]string, error) {
			return []string{"alice", "bob", "carol"}, nil
		}
		source.TeamRoleFunc = func(ctx context.Context, org, slug, username string) (models.Role, error) {
			cancel()
			return models.RoleMaintainer, nil
		}

		engine := NewTeamEngine(source, nil, EngineOpts{RequestsPerSecond: 1000})
		result, err := engine.Export(cctx, nil, "acme", models.ExportMembersOnly)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if len(result.Snapshot.Memberships) != 1 {
			t.Errorf("expected 1 membership before cancellation, got %d", len(result.Snapshot.Memberships))
		}
		if len(result.Warnings) != 1 {
			t.Errorf("expected a single cancellation warning, got %v", result.Warnings)
		}
	})

	t.Run("resulting snapshot validates", func(t *testing.T) {
		engine := NewTeamEngine(syncedSource(), nil, EngineOpts{})

		result, err := engine.Export(ctx, nil, "acme", models.ExportAll)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if err := result.Snapshot.Validate(); err != nil {
			t.Errorf("exported snapshot failed validation: %v", err)
		}
	})

	t.Run("progress updates are emitted without blocking", func(t *testing.T) {
		engine := NewTeamEngine(syncedSource(), nil, EngineOpts{})
		progress := make(chan ProgressUpdate, 64)

		if _, err := engine.Export(ctx, progress, "acme", models.ExportAll); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		close(progress)

		sawFetch := false
		for update := range progress {
			if update.Phase == FetchTeams {
				sawFetch = true
			}
		}
		if !sawFetch {
			t.Error("expected a fetch_teams progress update")
		}
	})
}
