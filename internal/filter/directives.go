package filter

import "github.com/wizzomafizzo/filefilter/internal/module"

// Directives is the capability surface handed to auto-project collaborators.
// It exposes the same operations any other rule caller gets and nothing else.
type Directives interface {
	AddManualMapping(source, destination string) error
	ApplyInclude(pattern string) (bool, error)
	ApplyExclude(pattern string) (bool, error)
	ApplyRewrite(find, replace string) (bool, error)
}

// AutoProjecter populates mappings from project-type heuristics.
type AutoProjecter interface {
	AutoProject(d Directives, mod *module.Module, platform string) error
}

// AutoProjectFunc adapts a function to AutoProjecter.
type AutoProjectFunc func(d Directives, mod *module.Module, platform string) error

// AutoProject calls fn.
func (fn AutoProjectFunc) AutoProject(d Directives, mod *module.Module, platform string) error {
	return fn(d, mod, platform)
}
