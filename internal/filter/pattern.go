package filter

import (
	"fmt"
	"sync"

	"github.com/dlclark/regexp2"
)

// patterns caches compiled expressions for the lifetime of the process.
var patterns sync.Map

// Compile returns the cached compiled form of pattern.
func Compile(pattern string) (*regexp2.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp2.Regexp), nil
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrInvalidPattern, pattern, err)
	}

	actual, _ := patterns.LoadOrStore(pattern, re)
	return actual.(*regexp2.Regexp), nil
}

// matchString reports whether re matches anywhere in s.
func matchString(re *regexp2.Regexp, s string) (bool, error) {
	matched, err := re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("failed to match '%s': %w", s, err)
	}
	return matched, nil
}

// replaceAll substitutes every match of re in s with replacement.
func replaceAll(re *regexp2.Regexp, s, replacement string) (string, error) {
	out, err := re.Replace(s, replacement, -1, -1)
	if err != nil {
		return "", fmt.Errorf("failed to rewrite '%s': %w", s, err)
	}
	return out, nil
}
