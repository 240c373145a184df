package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/envstack/envstack/internal/constants"
	apperrors "github.com/envstack/envstack/internal/errors"
)

// Load reads, decodes, and validates the environment configuration at
// filename. JSON files may carry comments and trailing commas; .yaml and
// .yml files are decoded as YAML.
//
// When the file is absent and createMissing is true, the factory defaults
// (merged with every extension's fragment) are written to filename and used,
// but only when filename is the default config filename. Any other absent
// filename is a load error.
func Load(filename string, createMissing bool, extensions []Extension) (Config, error) {
	var cfg Config

	switch data, err := os.ReadFile(filename); {
	case err == nil:
		cfg, err = decode(filename, data)
		if err != nil {
			return nil, apperrors.NewLoadError(filename+" could not be parsed", err)
		}

	case os.IsNotExist(err) && createMissing && filename == constants.DefaultEnvironmentConfigFile:
		cfg = ExtendedDefaults(FactoryDefaults(), extensions)
		if writeErr := writeDefaults(filename, cfg); writeErr != nil {
			return nil, apperrors.NewLoadError(filename+" could not be written", writeErr)
		}

	case os.IsNotExist(err):
		return nil, apperrors.NewLoadError(filename+" could not be found", err)

	default:
		return nil, apperrors.NewLoadError(filename+" could not be read", err)
	}

	if err := Validate(ExtendedSchema(BaseSchema(), extensions), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(filename string, data []byte) (Config, error) {
	var tree map[string]any
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &tree); err != nil {
			return nil, err
		}
	}
	return Config(tree), nil
}

func writeDefaults(filename string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), constants.OutputFilePermissions)
}
