package filter

import "errors"

var (
	// ErrDuplicateKey indicates an insertion that would overwrite an existing source key.
	ErrDuplicateKey = errors.New("duplicate mapping key")
	// ErrNotInModule indicates the autoproject directive was used outside a module.
	ErrNotInModule = errors.New("the 'autoproject' directive was used, but the source folder for packaging is not a module")
	// ErrNoAutoProjecter indicates no auto-project collaborator was configured.
	ErrNoAutoProjecter = errors.New("no automatic project packager configured")
	// ErrInvalidPattern indicates a rule pattern that failed to compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")
)
