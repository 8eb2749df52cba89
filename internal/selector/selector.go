package selector

import (
	"path/filepath"
	"strings"

	"linefix/internal/config"
)

// Rules decides whether a file takes part in normalization.
// It is a pure predicate over path metadata; no filesystem access happens here.
type Rules struct {
	extensions map[string]bool // lowercase, dot-prefixed
	dotfiles   map[string]bool // exact extensionless dotfile names
}

// NewRules builds selection rules from explicit sets.
func NewRules(extensions, dotfiles map[string]bool) *Rules {
	return &Rules{
		extensions: extensions,
		dotfiles:   dotfiles,
	}
}

// FromConfig builds selection rules from a loaded configuration.
func FromConfig(cfg *config.Config) *Rules {
	return NewRules(cfg.ExtensionSet(), cfg.DotfileSet())
}

// ShouldProcess reports whether the file at path should be normalized.
// A file is selected when its extension (case-insensitive) is recognized,
// or when it is an extensionless dotfile on the allow-list.
func (r *Rules) ShouldProcess(path string) bool {
	name := filepath.Base(path)
	ext := extension(name)

	if ext != "" {
		return r.extensions[strings.ToLower(ext)]
	}
	if strings.HasPrefix(name, ".") {
		return r.dotfiles[name]
	}
	return false
}

// extension returns the file extension, treating names that consist only of
// a leading dot ("." + rest with no further dot, like ".env") as
// extensionless. filepath.Ext would report ".env" itself as the extension,
// which would wrongly bypass the dotfile allow-list.
func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return ext
}
