// Package patterns generates rule patterns from literal paths.
package patterns

import (
	"regexp"
	"strings"
)

// ForPath converts a literal path into an anchored pattern that matches it
// with either separator.
func ForPath(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}

	return "^" + strings.Join(parts, `[/\\]`) + "$"
}

// ForExtension returns a pattern matching files ending in ext.
func ForExtension(ext string) string {
	return regexp.QuoteMeta("." + strings.TrimPrefix(ext, ".")) + "$"
}

// ForDirectory returns a pattern matching everything below dir.
func ForDirectory(dir string) string {
	dir = strings.Trim(strings.ReplaceAll(dir, `\`, "/"), "/")
	return "^" + regexp.QuoteMeta(dir) + "/"
}
