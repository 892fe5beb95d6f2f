package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/teammirror/internal/formatter"
	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/desertthunder/teammirror/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive snapshot browser and mirror workflow.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
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

	engine, err := r.targetEngine(cmd.StringArg("url"))
	if err != nil {
		return err
	}

	path := r.snapshotPath(cmd)
	load := func() (*models.Snapshot, error) {
		return formatter.ReadSnapshot(path)
	}

	model := ui.NewModel(ctx, engine, load, org, mode)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
