// Package constants defines global constants used throughout envstack.
// It includes version information, paths, and configuration keys.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of envstack.
func GetVersion() *string {
	return &version
}

// ProjectName is the name of the CLI tool and application
const ProjectName = "envstack"

// ConfigDirName is the name of the configuration directory in the user's home directory
const ConfigDirName = ".envstack"

// ConfigFileName is the name of the global configuration file
const ConfigFileName = "config.yaml"

// ConfigDirPath returns the full path to the global configuration directory.
func ConfigDirPath(homeDir string) string {
	return homeDir + "/" + ConfigDirName
}

// ConfigFilePath returns the full path to the global configuration file
func ConfigFilePath(homeDir string) string {
	return ConfigDirPath(homeDir) + "/" + ConfigFileName
}

// DefaultEnvironmentConfigFile is the environment config file created and
// loaded when no --config-file override is given
const DefaultEnvironmentConfigFile = "config.json"

// DefaultImageCatalogFile is the region-to-AMI catalog file name
const DefaultImageCatalogFile = "ami_cache.json"

// TemplateOutputDir is the relative directory rendered templates are written to
const TemplateOutputDir = "templates"

// Environment represents the execution environment (e.g., CLI, CI).
type Environment string

// Environment types for logger configuration
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)

// PrefsCtxKeyType is the type for the CLI preferences context key
type PrefsCtxKeyType string

// PrefsCtxKey is the key used to store CLI preferences in context
const PrefsCtxKey PrefsCtxKeyType = "prefs"

// StartTimeCtxKeyType is the type for start time context keys
type StartTimeCtxKeyType string

// StartTimeCtxKey is the key used to store the start time in context
const StartTimeCtxKey StartTimeCtxKeyType = "startTime"

// StackResourceType is the CloudFormation resource type for nested stacks
const StackResourceType = "AWS::CloudFormation::Stack"

// StackCreateTimeoutMinutes bounds how long CloudFormation waits for stack
// creation before declaring failure
const StackCreateTimeoutMinutes = 60

// File permission constants

// ConfigDirPermissions is the file system permissions for config directory (0750)
const ConfigDirPermissions = 0750

// ConfigFilePermissions is the file system permissions for config file (0600)
const ConfigFilePermissions = 0600

// OutputDirPermissions is the file system permissions for the template output directory (0755)
const OutputDirPermissions = 0755

// OutputFilePermissions is the file system permissions for rendered template files (0644)
const OutputFilePermissions = 0644

// UI/Display constants

// HeaderSeparatorLength is the length of the header separator line
const HeaderSeparatorLength = 50
