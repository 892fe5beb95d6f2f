package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/teammirror/internal/services"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/desertthunder/teammirror/internal/tasks"
	"github.com/urfave/cli/v3"
)

// requestsPerSecond paces remote API calls during exports and mirrors.
const requestsPerSecond = 5

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	source services.Service
	target services.Service
	logger *log.Logger
	output io.Writer
	engine tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Source services.Service
	Target services.Service
	Logger *log.Logger
	Output io.Writer
	Engine tasks.Engine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Engine == nil {
		opts.Engine = tasks.NewTeamEngine(opts.Source, opts.Target, tasks.EngineOpts{
			RequestsPerSecond: requestsPerSecond,
		})
	}

	return &Runner{
		config: opts.Config,
		source: opts.Source,
		target: opts.Target,
		logger: opts.Logger,
		output: opts.Output,
		engine: opts.Engine,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		exportCommand, mirrorCommand, snapshotCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// applyConfigFlag reloads configuration when --config is set explicitly,
// rebuilding the instance services and engine against the new credentials.
// Without the flag the configuration loaded at startup stays in effect.
func (r *Runner) applyConfigFlag(cmd *cli.Command) error {
	if !cmd.IsSet("config") {
		return nil
	}

	config, err := shared.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	r.config = config

	if config.Credentials.Source.Token != "" {
		svc, err := services.NewGitHubService(config.Credentials.Source.BaseURL, config.Credentials.Source.Token)
		if err != nil {
			return err
		}
		r.source = svc
	}
	if config.Credentials.Target.Token != "" {
		svc, err := services.NewGitHubService(config.Credentials.Target.BaseURL, config.Credentials.Target.Token)
		if err != nil {
			return err
		}
		r.target = svc
	}

	r.engine = tasks.NewTeamEngine(r.source, r.target, tasks.EngineOpts{RequestsPerSecond: requestsPerSecond})
	return nil
}

// sourceEngine returns the runner's engine, or one rebuilt against an
// overriding source base URL from the optional positional argument.
func (r *Runner) sourceEngine(baseURL string) (tasks.Engine, error) {
	if baseURL == "" {
		return r.engine, nil
	}

	svc, err := services.NewGitHubService(baseURL, r.config.Credentials.Source.Token)
	if err != nil {
		return nil, err
	}

	return tasks.NewTeamEngine(svc, r.target, tasks.EngineOpts{RequestsPerSecond: requestsPerSecond}), nil
}

// targetEngine returns the runner's engine, or one rebuilt against an
// overriding target base URL from the optional positional argument.
func (r *Runner) targetEngine(baseURL string) (tasks.Engine, error) {
	if baseURL == "" {
		return r.engine, nil
	}

	svc, err := services.NewGitHubService(baseURL, r.config.Credentials.Target.Token)
	if err != nil {
		return nil, err
	}

	return tasks.NewTeamEngine(r.source, svc, tasks.EngineOpts{RequestsPerSecond: requestsPerSecond}), nil
}

// snapshotPath resolves the snapshot file path from the flag, falling back to
// the configured default.
func (r *Runner) snapshotPath(cmd *cli.Command) string {
	if path := cmd.String("snapshot"); path != "" {
		return path
	}
	return r.config.Export.SnapshotPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
