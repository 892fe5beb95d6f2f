// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// exportCommand captures a source organization's team topology into a snapshot file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export an organization's teams, hierarchy, sync state, and memberships to a snapshot",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "org",
			},
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Export mode (all, idp-only, members-only, teams-only)",
				Sources: cli.EnvVars("TEAMMIRROR_EXPORT_MODE", "EXPORT_MODE"),
			},
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"o"},
				Usage:   "Output path for the snapshot file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the snapshot as JSON instead of a summary",
			},
		},
		Action: r.Export,
	}
}

// mirrorCommand replays a snapshot against a target organization.
func mirrorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "Mirror a snapshot into a target organization",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "org",
			},
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Mirror mode (auto, all, idp-only, members-only, teams-only)",
				Value:   "auto",
				Sources: cli.EnvVars("TEAMMIRROR_MIRROR_MODE", "MIRROR_MODE"),
			},
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"s"},
				Usage:   "Path to the snapshot file",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the identity-provider mapping report to this path",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the mirror result as JSON instead of a summary",
			},
		},
		Action: r.Mirror,
	}
}

// snapshotCommand inspects snapshot files without touching any remote instance.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Inspect a snapshot file",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the snapshot document",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"s"},
						Usage:   "Path to the snapshot file",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SnapshotShow,
			},
			{
				Name:  "summary",
				Usage: "Summarize teams, memberships, and mappings",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"s"},
						Usage:   "Path to the snapshot file",
					},
				},
				Action: r.SnapshotSummary,
			},
			{
				Name:  "members",
				Usage: "Export the snapshot's membership records to CSV",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"s"},
						Usage:   "Path to the snapshot file",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path for the CSV file",
					},
				},
				Action: r.SnapshotMembers,
			},
		},
	}
}

// historyCommand lists recorded export and mirror runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded export and mirror runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Filter by run kind (export or mirror)",
			},
			&cli.StringFlag{
				Name:  "org",
				Usage: "Filter by organization",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the new configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive mirroring.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing and mirroring a snapshot",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "org",
			},
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Mirror mode (auto, all, idp-only, members-only, teams-only)",
				Value:   "auto",
				Sources: cli.EnvVars("TEAMMIRROR_MIRROR_MODE", "MIRROR_MODE"),
			},
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"s"},
				Usage:   "Path to the snapshot file",
			},
		},
		Action: r.TUI,
	}
}
