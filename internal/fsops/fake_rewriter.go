package fsops

import (
	"io/fs"
	"os"
)

// FakeRewriter implements Rewriter for testing
// Serves file contents from memory and records every write call
type FakeRewriter struct {
	Files    map[string][]byte
	Writes   []string
	ReadErr  map[string]error
	WriteErr map[string]error
}

// NewFakeRewriter creates a fake with the given in-memory files.
func NewFakeRewriter(files map[string][]byte) *FakeRewriter {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &FakeRewriter{Files: files}
}

func (f *FakeRewriter) ReadFile(path string) ([]byte, error) {
	if err, ok := f.ReadErr[path]; ok {
		return nil, err
	}
	data, ok := f.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *FakeRewriter) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err, ok := f.WriteErr[path]; ok {
		return err
	}
	f.Writes = append(f.Writes, path)
	stored := make([]byte, len(data))
	copy(stored, data)
	f.Files[path] = stored
	return nil
}
