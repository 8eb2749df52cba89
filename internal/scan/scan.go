package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linefix/internal/selector"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	// Format key-value pairs
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Candidate is a file selected for line-ending normalization
type Candidate struct {
	Path    string // Absolute or root-relative as given to Scan
	RelPath string // Relative to the scan root, for display
	Name    string
	Size    int64
	ModTime time.Time
}

// Extension returns the candidate's lowercase extension, empty for dotfiles.
func (c Candidate) Extension() string {
	ext := filepath.Ext(c.Name)
	if ext == c.Name {
		return ""
	}
	return strings.ToLower(ext)
}

// Scanner walks a directory tree and yields candidates for normalization
type Scanner struct {
	logger   Logger
	rules    *selector.Rules
	excluded map[string]bool
}

// NewScanner creates a new Scanner with the given logger and selection rules
func NewScanner(logger *log.Logger, rules *selector.Rules, excludedDirs map[string]bool) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		logger:   &stdLogger{Logger: logger},
		rules:    rules,
		excluded: excludedDirs,
	}
}

var (
	// ErrRootMissing reports that the scan root does not exist
	ErrRootMissing = errors.New("root directory does not exist")
	// ErrRootNotDir reports that the scan root is not a directory
	ErrRootNotDir = errors.New("root is not a directory")
)

// Scan visits every file under root exactly once, pruning excluded directory
// subtrees entirely, and returns the selected candidates in walk order.
// Per-entry errors (permissions etc.) are logged and skipped; only a missing
// or invalid root fails the scan.
func (s *Scanner) Scan(root string) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, root)
		}
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	var candidates []Candidate

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			// Prune excluded subtrees so their contents are never visited
			if path != root && s.excluded[d.Name()] {
				s.logger.Debug("Pruning excluded directory", "path", path)
				return fs.SkipDir
			}
			return nil
		}

		if !s.rules.ShouldProcess(path) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			s.logger.Warn("Skipping entry without file info", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		candidates = append(candidates, Candidate{
			Path:    path,
			RelPath: rel,
			Name:    d.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	s.logger.Info("Scan complete", "root", root, "candidates", len(candidates))
	return candidates, nil
}
