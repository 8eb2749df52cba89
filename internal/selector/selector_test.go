package selector

import (
	"testing"

	"linefix/internal/config"
)

func defaultRules() *Rules {
	return FromConfig(config.Default())
}

func TestShouldProcess(t *testing.T) {
	rules := defaultRules()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "javascript file", path: "src/app.js", want: true},
		{name: "uppercase extension", path: "README.MD", want: true},
		{name: "mixed case extension", path: "styles/Main.Css", want: true},
		{name: "typescript in nested dir", path: "a/b/c/index.tsx", want: true},
		{name: "suffixed env file", path: "config/production.env", want: true},
		{name: "allow-listed dotfile", path: ".env", want: true},
		{name: "allow-listed dotfile in subdir", path: "services/api/.gitignore", want: true},
		{name: "gitattributes", path: ".gitattributes", want: true},
		{name: "dotfile not on allow-list", path: ".bashrc", want: false},
		{name: "env local has an extension", path: ".env.local", want: false},
		{name: "unrecognized extension", path: "bin/tool.exe", want: false},
		{name: "no extension", path: "Makefile", want: false},
		{name: "trailing dot", path: "notes.", want: false},
		{name: "sql file", path: "migrations/001_init.sql", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.ShouldProcess(tt.path); got != tt.want {
				t.Errorf("ShouldProcess(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldProcessCustomRules(t *testing.T) {
	rules := NewRules(
		map[string]bool{".go": true},
		map[string]bool{".envrc": true},
	)

	if !rules.ShouldProcess("main.go") {
		t.Error("expected .go to be selected by custom rules")
	}
	if rules.ShouldProcess("app.js") {
		t.Error("custom rules should not select .js")
	}
	if !rules.ShouldProcess(".envrc") {
		t.Error("expected .envrc to be selected by custom allow-list")
	}
	if rules.ShouldProcess(".env") {
		t.Error("custom allow-list should not select .env")
	}
}
