package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/teammirror/internal/formatter"
	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/desertthunder/teammirror/internal/tasks"
	tu "github.com/desertthunder/teammirror/internal/testing"
	"github.com/urfave/cli/v3"
)

// mockEngine is a canned-response double for [tasks.Engine].
type mockEngine struct {
	exportResult *tasks.ExportResult
	exportErr    error
	mirrorResult *tasks.MirrorResult
	mirrorErr    error
	exportedOrg  string
	mirroredOrg  string
	mirroredMode models.MirrorMode
}

func (m *mockEngine) Export(ctx context.Context, progress chan<- tasks.ProgressUpdate, org string, mode models.ExportMode) (*tasks.ExportResult, error) {
	m.exportedOrg = org
	return m.exportResult, m.exportErr
}

func (m *mockEngine) Mirror(ctx context.Context, progress chan<- tasks.ProgressUpdate, org string, snap *models.Snapshot, mode models.MirrorMode) (*tasks.MirrorResult, error) {
	m.mirroredOrg = org
	m.mirroredMode = mode
	return m.mirrorResult, m.mirrorErr
}

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Export.SnapshotPath = filepath.Join(dir, "team_snapshot.json")
	config.Database.Path = filepath.Join(dir, "history.db")
	return config
}

func testApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "teammirror",
		Commands: r.register(),
	}
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ExportMode: models.ExportAll,
		Teams: []models.Team{
			{Slug: "eng", Name: "Engineering", Privacy: models.PrivacyClosed},
		},
		Memberships: []models.Membership{
			{Team: "eng", Username: "alice", Role: models.RoleMember},
		},
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockService{}
			target := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Source: source,
				Target: target,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("Export", func(t *testing.T) {
		t.Run("writes snapshot and summary", func(t *testing.T) {
			config := testConfig(t)
			output := &bytes.Buffer{}
			engine := &mockEngine{
				exportResult: &tasks.ExportResult{Snapshot: testSnapshot()},
			}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: engine})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "export", "acme"})
			if err != nil {
				t.Fatalf("export failed: %v", err)
			}

			if engine.exportedOrg != "acme" {
				t.Errorf("exported org = %q", engine.exportedOrg)
			}
			tu.AssertFileExists(t, config.Export.SnapshotPath)
			if !strings.Contains(output.String(), "Export Complete!") {
				t.Errorf("missing summary: %q", output.String())
			}
		})

		t.Run("missing organization argument fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "export"})
			if err == nil {
				t.Fatal("expected error for missing organization")
			}
		})

		t.Run("invalid mode fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "export", "acme", "--mode", "bogus"})
			if err == nil {
				t.Fatal("expected error for invalid mode")
			}
		})

		t.Run("url override requires source credentials", func(t *testing.T) {
			config := testConfig(t)
			config.Credentials.Source.Token = ""
			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "export", "acme", "https://ghe.internal/api/v3"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected credentials error, got %v", err)
			}
		})

		t.Run("engine failure surfaces", func(t *testing.T) {
			engine := &mockEngine{exportErr: fmt.Errorf("listing failed")}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Engine: engine})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "export", "acme"})
			if err == nil || !strings.Contains(err.Error(), "listing failed") {
				t.Errorf("expected engine error, got %v", err)
			}
		})
	})

	t.Run("Mirror", func(t *testing.T) {
		t.Run("reads snapshot and reports summary", func(t *testing.T) {
			config := testConfig(t)
			if _, err := formatter.WriteSnapshot(testSnapshot(), config.Export.SnapshotPath); err != nil {
				t.Fatalf("failed to seed snapshot: %v", err)
			}

			output := &bytes.Buffer{}
			engine := &mockEngine{
				mirrorResult: &tasks.MirrorResult{
					EffectiveMode:    models.ExportAll,
					Created:          []string{"eng"},
					MembershipsAdded: 1,
				},
			}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: engine})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "mirror", "globex"})
			if err != nil {
				t.Fatalf("mirror failed: %v", err)
			}

			if engine.mirroredOrg != "globex" {
				t.Errorf("mirrored org = %q", engine.mirroredOrg)
			}
			if engine.mirroredMode != models.MirrorAuto {
				t.Errorf("default mode = %s, want auto", engine.mirroredMode)
			}
			if !strings.Contains(output.String(), "Mirror Complete!") {
				t.Errorf("missing summary: %q", output.String())
			}
		})

		t.Run("missing snapshot file fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "mirror", "globex"})
			if err == nil {
				t.Fatal("expected error for missing snapshot")
			}
		})

		t.Run("explicit mode flag is forwarded", func(t *testing.T) {
			config := testConfig(t)
			if _, err := formatter.WriteSnapshot(testSnapshot(), config.Export.SnapshotPath); err != nil {
				t.Fatalf("failed to seed snapshot: %v", err)
			}

			engine := &mockEngine{mirrorResult: &tasks.MirrorResult{EffectiveMode: models.ExportTeamsOnly}}
			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}, Engine: engine})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "mirror", "globex", "--mode", "teams-only"})
			if err != nil {
				t.Fatalf("mirror failed: %v", err)
			}
			if engine.mirroredMode != models.MirrorTeamsOnly {
				t.Errorf("mode = %s, want teams-only", engine.mirroredMode)
			}
		})
	})

	t.Run("Snapshot", func(t *testing.T) {
		t.Run("summary renders counts", func(t *testing.T) {
			config := testConfig(t)
			if _, err := formatter.WriteSnapshot(testSnapshot(), config.Export.SnapshotPath); err != nil {
				t.Fatalf("failed to seed snapshot: %v", err)
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "snapshot", "summary"})
			if err != nil {
				t.Fatalf("summary failed: %v", err)
			}
			if !strings.Contains(output.String(), "Teams: 1") {
				t.Errorf("missing counts: %q", output.String())
			}
		})

		t.Run("show prints JSON", func(t *testing.T) {
			config := testConfig(t)
			if _, err := formatter.WriteSnapshot(testSnapshot(), config.Export.SnapshotPath); err != nil {
				t.Fatalf("failed to seed snapshot: %v", err)
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "snapshot", "show"})
			if err != nil {
				t.Fatalf("show failed: %v", err)
			}
			if !strings.Contains(output.String(), `"export_mode": "all"`) {
				t.Errorf("missing JSON output: %q", output.String())
			}
		})

		t.Run("members writes CSV", func(t *testing.T) {
			config := testConfig(t)
			if _, err := formatter.WriteSnapshot(testSnapshot(), config.Export.SnapshotPath); err != nil {
				t.Fatalf("failed to seed snapshot: %v", err)
			}

			csvPath := filepath.Join(t.TempDir(), "members.csv")
			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "snapshot", "members", "--output", csvPath})
			if err != nil {
				t.Fatalf("members failed: %v", err)
			}
			if !strings.Contains(tu.MustReadFile(t, csvPath), "alice") {
				t.Error("CSV missing membership record")
			}
		})
	})

	t.Run("Config", func(t *testing.T) {
		t.Run("config flag selects the configuration file", func(t *testing.T) {
			dir := t.TempDir()
			snapPath := filepath.Join(dir, "alt_snapshot.json")
			if _, err := formatter.WriteSnapshot(testSnapshot(), snapPath); err != nil {
				t.Fatalf("failed to seed snapshot: %v", err)
			}

			configPath := filepath.Join(dir, "prod.toml")
			content := fmt.Sprintf("[export]\nsnapshot_path = %q\n", snapPath)
			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "snapshot", "summary", "--config", configPath})
			if err != nil {
				t.Fatalf("summary failed: %v", err)
			}
			if !strings.Contains(output.String(), snapPath) || !strings.Contains(output.String(), "Teams: 1") {
				t.Errorf("expected summary of the flagged config's snapshot, got %q", output.String())
			}
		})

		t.Run("explicit config flag must parse", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "broken.toml")
			if err := os.WriteFile(configPath, []byte("not toml ==="), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "history", "--config", configPath})
			if err == nil {
				t.Error("expected error for malformed config file")
			}
		})

		t.Run("unset config flag keeps the startup configuration", func(t *testing.T) {
			config := testConfig(t)
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "history"})
			if err != nil {
				t.Fatalf("history failed: %v", err)
			}
			if runner.config != config {
				t.Error("expected startup configuration to stay in effect")
			}
		})
	})

	t.Run("History", func(t *testing.T) {
		t.Run("empty database lists nothing", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "history"})
			if err != nil {
				t.Fatalf("history failed: %v", err)
			}
			if !strings.Contains(output.String(), "No runs recorded") {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("export runs are recorded", func(t *testing.T) {
			config := testConfig(t)
			engine := &mockEngine{exportResult: &tasks.ExportResult{Snapshot: testSnapshot()}}
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: engine})
			app := testApp(runner)

			if err := app.Run(context.Background(), []string{"teammirror", "export", "acme"}); err != nil {
				t.Fatalf("export failed: %v", err)
			}

			output.Reset()
			if err := app.Run(context.Background(), []string{"teammirror", "history", "--kind", "export"}); err != nil {
				t.Fatalf("history failed: %v", err)
			}
			if !strings.Contains(output.String(), "acme") {
				t.Errorf("history missing recorded run: %q", output.String())
			}
		})
	})

	t.Run("StartupConfig", func(t *testing.T) {
		t.Run("missing file returns defaults silently", func(t *testing.T) {
			var buf bytes.Buffer
			config := loadStartupConfig(filepath.Join(t.TempDir(), "config.toml"), shared.NewLogger(&buf))

			if config.Export.Mode != "all" {
				t.Errorf("expected default export mode, got %q", config.Export.Mode)
			}
			if buf.Len() != 0 {
				t.Errorf("expected no log output, got %q", buf.String())
			}
		})

		t.Run("malformed file warns and falls back to defaults", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("not toml ==="), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			var buf bytes.Buffer
			config := loadStartupConfig(path, shared.NewLogger(&buf))

			if config.Export.Mode != "all" {
				t.Errorf("expected default export mode, got %q", config.Export.Mode)
			}
			if !strings.Contains(buf.String(), "malformed") {
				t.Errorf("expected a warning about the malformed file, got %q", buf.String())
			}
		})

		t.Run("valid file is loaded", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[export]\nmode = \"teams-only\"\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config := loadStartupConfig(path, shared.NewLogger(&bytes.Buffer{}))
			if config.Export.Mode != "teams-only" {
				t.Errorf("expected configured export mode, got %q", config.Export.Mode)
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		t.Run("database initializes and migrates", func(t *testing.T) {
			config := testConfig(t)
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Engine: &mockEngine{}})

			err := testApp(runner).Run(context.Background(), []string{"teammirror", "setup", "database"})
			if err != nil {
				t.Fatalf("setup database failed: %v", err)
			}
			tu.AssertFileExists(t, config.Database.Path)
		})

		t.Run("config writes starter file once", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Engine: &mockEngine{}})
			app := testApp(runner)

			if err := app.Run(context.Background(), []string{"teammirror", "setup", "config", "--output", path}); err != nil {
				t.Fatalf("setup config failed: %v", err)
			}
			tu.AssertFileExists(t, path)

			if err := app.Run(context.Background(), []string{"teammirror", "setup", "config", "--output", path}); err == nil {
				t.Error("expected error when config already exists")
			}
		})
	})
}
