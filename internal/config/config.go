package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server
}

type LoggingCfg struct {
	Directory    string `yaml:"directory" json:"directory"`         // Empty means stdout only
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // 0 disables throttling
}

type Config struct {
	Extensions       []string       `yaml:"extensions" json:"extensions"`               // Recognized extensions (lowercase, dot-prefixed)
	ExcludedDirs     []string       `yaml:"excluded_dirs" json:"excluded_dirs"`         // Directory names pruned from the walk
	DotfileAllowlist []string       `yaml:"dotfile_allowlist" json:"dotfile_allowlist"` // Extensionless dotfiles selected by exact name
	DatabasePath     string         `yaml:"database_path" json:"database_path"`         // Path to SQLite history database; empty disables
	Prometheus       PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging          LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits   ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
}

var (
	errNoExtensions     = errors.New("extensions must not be empty")
	errBadExtension     = errors.New("extension entry is empty")
	errNegativeRotation = errors.New("logging.rotation_days cannot be negative")
	errNegativeCPU      = errors.New("resource_limits.max_cpu_percent cannot be negative")
)

func defaultExtensions() []string {
	return []string{
		".js", ".jsx", ".ts", ".tsx", // JavaScript/TypeScript
		".py", ".sh", ".bash", // Python/Shell
		".json", ".jsonc", // JSON
		".css", ".scss", ".sass", ".less", // Stylesheets
		".html", ".htm", ".xml", ".svg", // Markup
		".md", ".markdown", ".txt", // Documentation
		".yml", ".yaml", // Config
		".env", ".gitignore", ".gitattributes", // Special files
		".sql", // Database
	}
}

func defaultExcludedDirs() []string {
	return []string{
		"node_modules", ".git", "dist", "build", "__pycache__",
		".next", "out", "coverage", ".cache", "venv", "env",
	}
}

func defaultDotfileAllowlist() []string {
	return []string{".env", ".gitignore", ".gitattributes"}
}

// Default returns the built-in configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	// validateAndDefault fills every zero field; the zero config is valid
	if err := cfg.validateAndDefault(); err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	// A missing key (nil slice) gets the default set; an explicitly empty
	// list is a configuration error
	if c.Extensions == nil {
		c.Extensions = defaultExtensions()
	} else if len(c.Extensions) == 0 {
		return errNoExtensions
	}
	if c.ExcludedDirs == nil {
		c.ExcludedDirs = defaultExcludedDirs()
	}
	if c.DotfileAllowlist == nil {
		c.DotfileAllowlist = defaultDotfileAllowlist()
	}

	cleaned := make([]string, 0, len(c.Extensions))
	seen := make(map[string]bool, len(c.Extensions))
	for _, ext := range c.Extensions {
		e, err := normalizeExtension(ext)
		if err != nil {
			return err
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		cleaned = append(cleaned, e)
	}
	c.Extensions = cleaned

	if c.Logging.RotationDays < 0 {
		return errNegativeRotation
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.ResourceLimits.MaxCPUPercent < 0 {
		return errNegativeCPU
	}

	return nil
}

// normalizeExtension lowercases an extension and ensures the leading dot.
func normalizeExtension(ext string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(ext))
	if e == "" || e == "." {
		return "", errBadExtension
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e, nil
}

// ExtensionSet returns the recognized extensions as a lookup set.
func (c *Config) ExtensionSet() map[string]bool {
	return toSet(c.Extensions)
}

// ExcludedDirSet returns the excluded directory names as a lookup set.
func (c *Config) ExcludedDirSet() map[string]bool {
	return toSet(c.ExcludedDirs)
}

// DotfileSet returns the dotfile allow-list as a lookup set.
func (c *Config) DotfileSet() map[string]bool {
	return toSet(c.DotfileAllowlist)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
