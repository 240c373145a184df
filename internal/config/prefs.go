package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/envstack/envstack/internal/constants"
)

// Prefs holds the per-user CLI preferences stored in ~/.envstack/config.yaml.
// Environment variables with the ENVSTACK_ prefix take precedence over file
// values.
type Prefs struct {
	// Region is the AWS region deployments run in. Empty defers to the
	// SDK's own resolution chain.
	Region string `mapstructure:"region" yaml:"region"`

	// Profile is the AWS shared config profile to use.
	Profile string `mapstructure:"profile" yaml:"profile"`

	// ConfigFile is the environment config file read when --config-file is
	// not given.
	ConfigFile string `mapstructure:"config_file" yaml:"config_file"`

	// TemplateBucket overrides the template.template_bucket config value.
	TemplateBucket string `mapstructure:"template_bucket" yaml:"template_bucket" validate:"omitempty,hostname_rfc1123"`

	// TemplateUploadACL overrides the template.template_upload_acl config
	// value applied to uploaded template objects.
	TemplateUploadACL string `mapstructure:"template_upload_acl" yaml:"template_upload_acl"`

	// LogLevel is the slog level name. Defaults to INFO.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

var validate = validator.New()

// LoadPrefs loads CLI preferences using Viper. A missing preferences file is
// not an error; environment variables and defaults still apply.
func LoadPrefs() (*Prefs, error) {
	v := viper.New()
	setPrefsDefaults(v)

	if err := readPrefsFile(v); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading preferences file: %w", err)
		}
	}

	v.SetEnvPrefix("ENVSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindPrefsEnvVars(v)

	var prefs Prefs
	if err := v.Unmarshal(&prefs); err != nil {
		return nil, fmt.Errorf("error unmarshaling preferences: %w", err)
	}

	if err := validate.Struct(&prefs); err != nil {
		return nil, fmt.Errorf("preferences validation failed: %w", err)
	}

	return &prefs, nil
}

// SavePrefs writes preferences to the user's home directory, overwriting any
// existing file.
func SavePrefs(prefs *Prefs) error {
	currentUser, err := user.Current()
	if err != nil {
		return fmt.Errorf("error getting current user: %w", err)
	}

	configDir := constants.ConfigDirPath(currentUser.HomeDir)
	if err = os.MkdirAll(configDir, constants.ConfigDirPermissions); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	prefsPath := filepath.Join(configDir, constants.ConfigFileName)

	v := viper.New()
	v.Set("region", prefs.Region)
	v.Set("profile", prefs.Profile)
	v.Set("config_file", prefs.ConfigFile)
	v.Set("template_bucket", prefs.TemplateBucket)
	v.Set("template_upload_acl", prefs.TemplateUploadACL)
	v.Set("log_level", prefs.LogLevel)

	if err = v.WriteConfigAs(prefsPath); err != nil {
		return fmt.Errorf("error writing preferences file: %w", err)
	}

	// Set proper permissions
	if err = os.Chmod(prefsPath, constants.ConfigFilePermissions); err != nil {
		return fmt.Errorf("error setting preferences file permissions: %w", err)
	}

	return nil
}

// GetPrefsPath returns the path to the preferences file.
func GetPrefsPath() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("error getting current user: %w", err)
	}
	return constants.ConfigFilePath(currentUser.HomeDir), nil
}

// GetLogLevel returns the slog.Level from the string preference. Defaults to
// INFO if the level string is invalid.
func (p *Prefs) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(p.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Helper functions

func setPrefsDefaults(v *viper.Viper) {
	v.SetDefault("config_file", constants.DefaultEnvironmentConfigFile)
	v.SetDefault("log_level", "INFO")
}

func readPrefsFile(v *viper.Viper) error {
	currentUser, err := user.Current()
	if err != nil {
		return fmt.Errorf("error getting current user: %w", err)
	}

	v.SetConfigFile(constants.ConfigFilePath(currentUser.HomeDir))
	v.SetConfigType("yaml")

	return v.ReadInConfig()
}

func bindPrefsEnvVars(v *viper.Viper) {
	// Bind all environment variables explicitly
	envVars := []string{
		"CONFIG_FILE",
		"LOG_LEVEL",
		"PROFILE",
		"REGION",
		"TEMPLATE_BUCKET",
		"TEMPLATE_UPLOAD_ACL",
	}

	for _, envVar := range envVars {
		configKey := strings.ToLower(envVar)
		_ = v.BindEnv(configKey, "ENVSTACK_"+envVar)
	}
}
