package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRewriteInsideRoot(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "sub", "file.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := NewValidator(root)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if err := v.ValidateRewrite(path); err != nil {
		t.Errorf("expected path inside root to validate, got %v", err)
	}
}

func TestValidateRewriteOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "other.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := NewValidator(root)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if err := v.ValidateRewrite(outside); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestValidateRewriteSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "target.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewValidator(root)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if err := v.ValidateRewrite(link); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot for escaping symlink, got %v", err)
	}
}

func TestValidateRewriteMissingFile(t *testing.T) {
	root := t.TempDir()
	v, err := NewValidator(root)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	err = v.ValidateRewrite(filepath.Join(root, "nope.txt"))
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestNewValidatorEmptyRoot(t *testing.T) {
	if _, err := NewValidator(""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}
