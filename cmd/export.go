package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/teammirror/internal/formatter"
	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/desertthunder/teammirror/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export captures a source organization's team topology into a snapshot file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	org := cmd.StringArg("org")
	if org == "" {
		return fmt.Errorf("%w: organization", shared.ErrMissingArgument)
	}

	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	modeFlag := cmd.String("mode")
	if modeFlag == "" {
		modeFlag = r.config.Export.Mode
	}
	mode, err := models.ParseExportMode(modeFlag)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	engine, err := r.sourceEngine(cmd.StringArg("url"))
	if err != nil {
		return err
	}

	r.logger.Info("starting export", "org", org, "mode", mode)
	r.writePlain("Exporting teams from '%s' (mode: %s)...\n\n", org, mode)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchTeams:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportTeam:
				r.writePlain("   %s\n", update.Message)
			case tasks.ExportMembers:
				r.writePlain("   %s\n", update.Message)
			case tasks.Warn:
				r.writePlain("⚠  %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Export(ctx, progressCh, org, mode)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	path, err := formatter.WriteSnapshot(result.Snapshot, r.snapshotPath(cmd))
	if err != nil {
		return err
	}

	snap := result.Snapshot
	r.recordRun(models.RunExport, org, string(mode),
		len(snap.Teams), len(snap.Memberships), len(snap.IdPGroups), len(result.Warnings))

	if cmd.Bool("json") {
		return r.writeJSON(snap, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Snapshot: %s\n", path)
	r.writePlain("%s", formatter.SnapshotToText(snap))

	if len(result.Warnings) > 0 {
		r.writePlain("\n%d warnings:\n", len(result.Warnings))
		for _, w := range result.Warnings {
			r.writePlain("  - %s\n", w)
		}
	}

	return nil
}
