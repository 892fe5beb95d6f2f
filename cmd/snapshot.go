package main

import (
	"context"

	"github.com/desertthunder/teammirror/internal/formatter"
	"github.com/urfave/cli/v3"
)

// SnapshotShow prints the snapshot document as JSON.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	snap, err := formatter.ReadSnapshot(r.snapshotPath(cmd))
	if err != nil {
		return err
	}

	return r.writeJSON(snap, cmd.Bool("pretty"))
}

// SnapshotSummary prints a plain text overview of a snapshot file.
func (r *Runner) SnapshotSummary(ctx context.Context, cmd *cli.Command) error {
	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	path := r.snapshotPath(cmd)

	snap, err := formatter.ReadSnapshot(path)
	if err != nil {
		return err
	}

	r.writePlainHeader("Snapshot Summary")
	r.writePlain("File: %s\n", path)
	r.writePlain("%s", formatter.SnapshotToText(snap))
	return nil
}

// SnapshotMembers writes the snapshot's membership records to a CSV file.
func (r *Runner) SnapshotMembers(ctx context.Context, cmd *cli.Command) error {
	if err := r.applyConfigFlag(cmd); err != nil {
		return err
	}

	snap, err := formatter.ReadSnapshot(r.snapshotPath(cmd))
	if err != nil {
		return err
	}

	path, err := formatter.WriteMembershipsCSV(snap.Memberships, cmd.String("output"))
	if err != nil {
		return err
	}

	r.writePlain("Wrote %d memberships to %s\n", len(snap.Memberships), path)
	return nil
}
