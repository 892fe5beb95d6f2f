package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/repositories"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// runRow is the JSON projection of a recorded run.
type runRow struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Org         string     `json:"org"`
	Mode        string     `json:"mode"`
	Teams       int        `json:"teams"`
	Memberships int        `json:"memberships"`
	IdPGroups   int        `json:"idp_groups"`
	Warnings    int        `json:"warnings"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// History lists recorded export and mirror runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to prepare history database: %w", err)
	}

	repo := repositories.NewRunRepository(db)
	runs, err := repo.List(map[string]any{
		"kind": cmd.String("kind"),
		"org":  cmd.String("org"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]runRow, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, toRow(run))
		}
		return r.writeJSON(rows, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Run History (%d)", len(runs)))
	for _, run := range runs {
		status := "incomplete"
		if !run.CompletedAt().IsZero() {
			status = run.CompletedAt().Format(time.RFC3339)
		}
		r.writePlain("%-7s %-20s mode=%-13s teams=%-4d members=%-5d warnings=%-3d %s\n",
			run.Kind(), run.Org(), run.Mode(), run.Teams(), run.Memberships(), run.Warnings(), status)
	}

	return nil
}

// recordRun persists a completed run to the history database. History is best
// effort: a missing or broken database logs a warning and never fails the command.
func (r *Runner) recordRun(kind models.RunKind, org, mode string, teams, memberships, idpGroups, warnings int) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return
	}

	run := models.NewRun(kind, org, mode)
	run.SetCounts(teams, memberships, idpGroups, warnings)
	run.Complete()

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
	}
}

func toRow(run *models.Run) runRow {
	row := runRow{
		ID:          run.ID(),
		Kind:        string(run.Kind()),
		Org:         run.Org(),
		Mode:        run.Mode(),
		Teams:       run.Teams(),
		Memberships: run.Memberships(),
		IdPGroups:   run.IdPGroups(),
		Warnings:    run.Warnings(),
		StartedAt:   run.StartedAt(),
	}
	if !run.CompletedAt().IsZero() {
		completed := run.CompletedAt()
		row.CompletedAt = &completed
	}
	return row
}
