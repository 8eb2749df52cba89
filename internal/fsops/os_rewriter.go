package fsops

import "os"

// OSRewriter implements Rewriter using real os package calls
type OSRewriter struct{}

func (OSRewriter) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSRewriter) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}
