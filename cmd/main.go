package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/teammirror/internal/services"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	var sourceService services.Service
	var targetService services.Service

	config := loadStartupConfig("config.toml", logger)

	if config.Credentials.Source.Token != "" {
		if svc, err := services.NewGitHubService(config.Credentials.Source.BaseURL, config.Credentials.Source.Token); err == nil {
			sourceService = svc
		}
	}
	if config.Credentials.Target.Token != "" {
		if svc, err := services.NewGitHubService(config.Credentials.Target.BaseURL, config.Credentials.Target.Token); err == nil {
			targetService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: sourceService,
		Target: targetService,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "teammirror",
		Usage:    "Export and mirror organization team topologies between instances",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadStartupConfig loads the working-directory configuration when present.
// A malformed file is reported and ignored so commands still run on defaults
// rather than failing before flag parsing.
func loadStartupConfig(path string, logger *log.Logger) *shared.Config {
	config := shared.DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		return config
	}

	loaded, err := shared.LoadConfig(path)
	if err != nil {
		logger.Warn("ignoring malformed configuration, using defaults", "path", path, "error", err)
		return config
	}

	return loaded
}
