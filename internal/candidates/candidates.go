// Package candidates enumerates the source files a filter chooses from.
package candidates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultSkipDirs are version control directories never offered as candidates.
var DefaultSkipDirs = []string{".git", ".hg", ".svn"}

// Options controls enumeration.
type Options struct {
	// SkipDirs are directory names pruned at any depth. Nil means DefaultSkipDirs.
	SkipDirs []string
}

// Walk returns every regular file under root as a forward-slash path relative
// to root, in lexical walk order.
func Walk(fs afero.Fs, root string, opts Options) ([]string, error) {
	skip := opts.SkipDirs
	if skip == nil {
		skip = DefaultSkipDirs
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipped[name] = struct{}{}
	}

	var paths []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if _, ok := skipped[info.Name()]; ok && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		paths = append(paths, Normalize(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return paths, nil
}

// Normalize converts a relative path to forward slashes without a leading "./".
func Normalize(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path
}
