package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if !cfg.ExtensionSet()[".js"] {
		t.Error("default extensions should include .js")
	}
	if !cfg.ExtensionSet()[".yaml"] {
		t.Error("default extensions should include .yaml")
	}
	if !cfg.ExcludedDirSet()["node_modules"] {
		t.Error("default excluded dirs should include node_modules")
	}
	if !cfg.DotfileSet()[".env"] {
		t.Error("default dotfile allow-list should include .env")
	}
	if cfg.DatabasePath != "" {
		t.Errorf("database should be disabled by default, got %q", cfg.DatabasePath)
	}
	if cfg.Prometheus.Port != 0 {
		t.Errorf("metrics server should be disabled by default, got port %d", cfg.Prometheus.Port)
	}
	if cfg.Logging.RotationDays != 30 {
		t.Errorf("expected default rotation of 30 days, got %d", cfg.Logging.RotationDays)
	}
}

func TestLoadConfigFile(t *testing.T) {
	content := `
extensions:
  - ".go"
  - "TXT"
excluded_dirs:
  - vendor
dotfile_allowlist:
  - ".envrc"
database_path: /tmp/history.db
prometheus:
  port: 9188
resource_limits:
  max_cpu_percent: 25
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	ext := cfg.ExtensionSet()
	if !ext[".go"] {
		t.Error("expected .go in extension set")
	}
	if !ext[".txt"] {
		t.Error("expected TXT to be normalized to .txt")
	}
	if ext[".js"] {
		t.Error("explicit extension list should replace defaults")
	}
	if !cfg.ExcludedDirSet()["vendor"] {
		t.Error("expected vendor in excluded dirs")
	}
	if cfg.ExcludedDirSet()["node_modules"] {
		t.Error("explicit excluded_dirs should replace defaults")
	}
	if cfg.DatabasePath != "/tmp/history.db" {
		t.Errorf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.Prometheus.Port != 9188 {
		t.Errorf("unexpected prometheus port %d", cfg.Prometheus.Port)
	}
	if cfg.ResourceLimits.MaxCPUPercent != 25 {
		t.Errorf("unexpected cpu limit %v", cfg.ResourceLimits.MaxCPUPercent)
	}
}

func TestLoadMissingKeysGetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database_path: /tmp/x.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.ExtensionSet()[".md"] {
		t.Error("missing extensions key should fall back to defaults")
	}
	if !cfg.ExcludedDirSet()[".git"] {
		t.Error("missing excluded_dirs key should fall back to defaults")
	}
}

func TestLoadRejectsEmptyExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("extensions: []\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for explicitly empty extension list")
	}
}

func TestValidateAndDefaultErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "blank extension entry",
			cfg:  Config{Extensions: []string{".js", "  "}},
			want: "extension entry is empty",
		},
		{
			name: "negative rotation",
			cfg:  Config{Logging: LoggingCfg{RotationDays: -1}},
			want: "rotation_days",
		},
		{
			name: "negative cpu limit",
			cfg:  Config{ResourceLimits: ResourceLimits{MaxCPUPercent: -5}},
			want: "max_cpu_percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validateAndDefault()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: ".js", want: ".js"},
		{in: "js", want: ".js"},
		{in: "TXT", want: ".txt"},
		{in: ".YAML", want: ".yaml"},
		{in: "", wantErr: true},
		{in: ".", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeExtension(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeExtension(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeExtension(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
