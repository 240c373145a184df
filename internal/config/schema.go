package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/gobwas/glob"

	apperrors "github.com/envstack/envstack/internal/errors"
)

// Schema describes the required shape of a configuration subtree. Keys are
// glob patterns supporting '?', '*', '[abc]', and '[!abc]'. Values are either
// a type name string (leaf requirement) or a nested Schema (compound
// requirement). A pattern may match many configuration keys; compound
// requirements recurse into every match independently.
type Schema map[string]any

// Validate checks config against schema and returns a validation error for
// the first violation found. Schema keys are visited in sorted order so the
// reported violation is deterministic.
func Validate(schema Schema, config Config) error {
	return validateAt(schema, map[string]any(config), "")
}

func validateAt(schema Schema, config map[string]any, path string) error {
	patterns := make([]string, 0, len(schema))
	for pattern := range schema {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		requirement := schema[pattern]
		matches := matchKeys(config, pattern)
		if len(matches) == 0 {
			missing := joinPath(path, pattern)
			return apperrors.NewValidationError(missing, "Config file missing section "+missing)
		}

		for _, key := range matches {
			childPath := joinPath(path, key)
			value := config[key]

			switch req := requirement.(type) {
			case string:
				if err := checkType(req, value, childPath); err != nil {
					return err
				}
			case Schema:
				if err := recurse(req, value, childPath); err != nil {
					return err
				}
			case map[string]any:
				if err := recurse(Schema(req), value, childPath); err != nil {
					return err
				}
			default:
				return apperrors.NewValidationError(childPath,
					fmt.Sprintf("Invalid schema requirement for %s, expected a type name or nested schema", childPath))
			}
		}
	}
	return nil
}

func recurse(schema Schema, value any, path string) error {
	section, ok := asMap(value)
	if !ok {
		return apperrors.NewValidationError(path,
			fmt.Sprintf("Type mismatch in config, %s should be a dict, not %s", path, typeName(value)))
	}
	return validateAt(schema, section, path)
}

// matchKeys returns the configuration keys matching pattern, sorted. A
// pattern that fails to compile is matched as a literal key name.
func matchKeys(config map[string]any, pattern string) []string {
	matcher, err := glob.Compile(pattern)

	var matches []string
	for key := range config {
		if err != nil {
			if key == pattern {
				matches = append(matches, key)
			}
			continue
		}
		if matcher.Match(key) {
			matches = append(matches, key)
		}
	}
	sort.Strings(matches)
	return matches
}

// checkType verifies that value satisfies the named type requirement.
// Recognized names: str, int, float, bool, list, dict, and their aliases.
func checkType(required string, value any, path string) error {
	ok := false
	switch required {
	case "str", "string":
		_, ok = value.(string)
	case "int", "integer":
		ok = isInt(value)
	case "float", "number":
		ok = isFloat(value)
	case "bool", "boolean":
		_, ok = value.(bool)
	case "list", "array":
		ok = isList(value)
	case "dict", "map", "mapping":
		_, ok = asMap(value)
	default:
		return apperrors.NewValidationError(path,
			fmt.Sprintf("Invalid schema requirement for %s, unknown type %s", path, required))
	}
	if !ok {
		return apperrors.NewValidationError(path,
			fmt.Sprintf("Type mismatch in config, %s should be of type %s, not %s", path, required, typeName(value)))
	}
	return nil
}

func isInt(value any) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return v == math.Trunc(v)
	default:
		return false
	}
}

func isFloat(value any) bool {
	switch value.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

func isList(value any) bool {
	switch value.(type) {
	case []any, []string:
		return true
	default:
		return false
	}
}

// typeName reports a value's type in the schema vocabulary for error
// messages.
func typeName(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		if v == math.Trunc(v) {
			return "int"
		}
		return "float"
	case []any, []string:
		return "list"
	default:
		if _, ok := asMap(value); ok {
			return "dict"
		}
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// Extend deep-copies base and merges each fragment into the copy by
// top-level key. Later fragments overwrite earlier entries sharing a key.
func Extend(base Schema, fragments ...Schema) Schema {
	merged, _ := deepCopyValue(map[string]any(base)).(map[string]any)
	for _, fragment := range fragments {
		for key, value := range fragment {
			merged[key] = deepCopyValue(value)
		}
	}
	return Schema(merged)
}

// MergeDefaults deep-copies base and merges each fragment into the copy by
// top-level key, mirroring Extend for default value trees.
func MergeDefaults(base Config, fragments ...map[string]any) Config {
	merged, _ := deepCopyValue(map[string]any(base)).(map[string]any)
	for _, fragment := range fragments {
		for key, value := range fragment {
			merged[key] = deepCopyValue(value)
		}
	}
	return Config(merged)
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, item := range v {
			copied[key] = deepCopyValue(item)
		}
		return copied
	case Config:
		return deepCopyValue(map[string]any(v))
	case Schema:
		return deepCopyValue(map[string]any(v))
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = deepCopyValue(item)
		}
		return copied
	case []string:
		copied := make([]string, len(v))
		copy(copied, v)
		return copied
	default:
		return v
	}
}
