// Package constants contains file and directory names shared across filefilter.
package constants

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "filefilter"

	// LogFilename is the default log file name for filefilter.
	LogFilename = "filefilter.log"

	// DatabaseFilename is the manifest history database file name.
	DatabaseFilename = "filefilter.db"

	// ModuleFilename is the module descriptor file name at a module root.
	ModuleFilename = "module.yml"

	// ConfigFilename is the default application config file name.
	ConfigFilename = "filefilter.yml"

	// RulesPath is the default packaging rules document, relative to the module root.
	RulesPath = "Build/Rules.yml"
)

// DefaultPlatform is used when neither config nor flags name a platform.
const DefaultPlatform = "Linux"
