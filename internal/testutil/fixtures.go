package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// NewMemTree creates an in-memory filesystem holding files under root.
// Keys are slash-separated paths relative to root.
func NewMemTree(t *testing.T, root string, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return fs
}
