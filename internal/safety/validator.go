package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProtectedPath = errors.New("protected path")
	ErrOutsideRoot   = errors.New("outside scan root")
)

// defaultProtectedPaths are prefixes a rewrite must never touch, regardless
// of where the scan root points. Rewriting under these is never sensible.
var defaultProtectedPaths = []string{"/proc", "/sys", "/dev", "/boot", "/run"}

// Validator enforces the safety contract for in-place rewrites: the resolved
// target must stay inside the scan root and outside protected system paths.
// Symlinked files pointing out of the tree are rejected here rather than
// silently rewritten.
type Validator struct {
	root      string // resolved scan root
	protected []string
}

// NewValidator creates a validator for the given scan root.
func NewValidator(root string) (*Validator, error) {
	if root == "" {
		return nil, ErrInvalidPath
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, root)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", abs, err)
	}
	return &Validator{
		root:      resolved,
		protected: defaultProtectedPaths,
	}, nil
}

// ValidateRewrite reports whether path may be overwritten in place.
func (v *Validator) ValidateRewrite(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	// Resolve symlinks so a link inside the tree cannot redirect the write
	// to a target outside it
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInvalidPath, path)
		}
		return fmt.Errorf("resolve %s: %w", abs, err)
	}

	if !withinRoot(resolved, v.root) {
		return fmt.Errorf("%w: %s resolves to %s", ErrOutsideRoot, path, resolved)
	}

	for _, p := range v.protected {
		if withinRoot(resolved, p) {
			return fmt.Errorf("%w: %s", ErrProtectedPath, resolved)
		}
	}
	return nil
}

// withinRoot reports whether path is root or lies underneath it.
func withinRoot(path, root string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return rel != "."
}
