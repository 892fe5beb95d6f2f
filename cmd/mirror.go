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

// Mirror replays a snapshot file against a target organization.
func (r *Runner) Mirror(ctx context.Context, cmd *cli.Command) error {
	org := cmd.StringArg("org")
	if org == "" {
		return fmt.Errorf("%w: organization", shared.ErrMissingArgument)
	}

	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	mode, err := models.ParseMirrorMode(cmd.String("mode"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	snap, err := formatter.ReadSnapshot(r.snapshotPath(cmd))
	if err != nil {
		return err
	}

	engine, err := r.targetEngine(cmd.StringArg("url"))
	if err != nil {
		return err
	}

	r.logger.Info("starting mirror", "org", org, "mode", mode, "teams", len(snap.Teams))
	r.writePlain("Mirroring %d teams into '%s'...\n\n", len(snap.Teams), org)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.MaterializeTeam:
				r.writePlain("   %s\n", update.Message)
			case tasks.ReportIdP:
				r.writePlain("📋 %s\n", update.Message)
			case tasks.ReplayMembership:
				r.writePlain("   %s\n", update.Message)
			case tasks.Warn:
				r.writePlain("⚠  %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Mirror(ctx, progressCh, org, snap, mode)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if len(result.IdPMappings) > 0 {
		report, err := formatter.WriteIdPReport(result.IdPMappings, cmd.String("report"))
		if err != nil {
			r.logger.Warn("failed to write mapping report", "error", err)
		} else {
			r.writePlain("\nIdentity-provider mapping report: %s\n", report.File)
		}
	}

	r.recordRun(models.RunMirror, org, string(result.EffectiveMode),
		len(result.Created)+len(result.Updated), result.MembershipsAdded,
		len(result.IdPMappings), len(result.Warnings))

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Mirror Complete!")
	r.writePlain("%s", formatter.MirrorResultToText(result))

	return nil
}
