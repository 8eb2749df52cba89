package fsops

import "os"

// Rewriter abstracts whole-file read and overwrite operations
// Enables mocking in tests to prove unchanged files are never rewritten
type Rewriter interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
}
