package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	apperrors "github.com/envstack/envstack/internal/errors"
)

// ApplyEnvOverrides scans every subsection of the named section for an
// environment variable called <SUBSECTION>_<KEY> (uppercased) and overwrites
// the subsection's value for key when the variable is set. Used for
// credential-like values that should never live in the config file: a "db"
// section with subsections "proddb" and "testdb" reads PRODDB_PASSWORD and
// TESTDB_PASSWORD for key "password".
func ApplyEnvOverrides(c Config, section, key string) error {
	sec, ok := c.Section(section)
	if !ok {
		return apperrors.NewLoadError(fmt.Sprintf("no config section %s found", section), nil)
	}

	labels := make([]string, 0, len(sec))
	for label := range sec {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		subsection, ok := asMap(sec[label])
		if !ok {
			continue
		}

		envName := strings.ToUpper(fmt.Sprintf("%s_%s", label, key))
		envValue := os.Getenv(envName)
		if envValue == "" {
			continue
		}

		slog.Debug("overriding config value from environment",
			"section", section, "subsection", label, "key", key, "variable", envName)
		subsection[key] = envValue
	}
	return nil
}

// ApplyDatabasePasswords fills the password of every database in the "db"
// section from the environment.
func ApplyDatabasePasswords(c Config) error {
	return ApplyEnvOverrides(c, "db", "password")
}
