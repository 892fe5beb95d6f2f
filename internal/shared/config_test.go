package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("parses a config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.source]
token = "src-token"
base_url = "https://ghe.internal/api/v3"

[credentials.target]
token = "tgt-token"
base_url = "https://api.github.com"

[export]
mode = "teams-only"
snapshot_path = "out.json"

[database]
path = "runs.db"
max_open_conns = 3
max_idle_conns = 1
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		if config.Credentials.Source.Token != "src-token" {
			t.Errorf("source token = %q", config.Credentials.Source.Token)
		}
		if config.Credentials.Source.BaseURL != "https://ghe.internal/api/v3" {
			t.Errorf("source base URL = %q", config.Credentials.Source.BaseURL)
		}
		if config.Export.Mode != "teams-only" {
			t.Errorf("export mode = %q", config.Export.Mode)
		}
		if config.Database.MaxOpenConns != 3 {
			t.Errorf("max open conns = %d", config.Database.MaxOpenConns)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("not toml ==="), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed file")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Credentials.Source.BaseURL != "https://api.github.com" {
		t.Errorf("default base URL = %q", config.Credentials.Source.BaseURL)
	}
	if config.Export.Mode != "all" {
		t.Errorf("default export mode = %q", config.Export.Mode)
	}
	if config.Export.SnapshotPath != "team_snapshot.json" {
		t.Errorf("default snapshot path = %q", config.Export.SnapshotPath)
	}
	if config.Database.Path == "" {
		t.Error("expected default database path")
	}
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile failed: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}
	if config.Export.Mode != "all" {
		t.Errorf("generated export mode = %q", config.Export.Mode)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected error when file already exists")
	}
}
