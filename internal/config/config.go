// Package config loads, validates, and mutates the nested key/value
// configuration tree that drives environment composition and deployment.
// Schemas are glob keyed and extensible by registered handlers, so service
// specific sections validate with the same machinery as the base sections.
package config

import (
	"sort"
)

// Config is the configuration tree: string keys mapping to scalars, lists,
// or nested sections.
type Config map[string]any

// Section returns the named top-level section when it is a mapping.
func (c Config) Section(name string) (map[string]any, bool) {
	raw, ok := c[name]
	if !ok {
		return nil, false
	}
	return asMap(raw)
}

// SectionNames returns the top-level section names in sorted order.
func (c Config) SectionNames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a string value from a section, or fallback when the section
// or key is absent or not a string.
func (c Config) String(section, key, fallback string) string {
	sec, ok := c.Section(section)
	if !ok {
		return fallback
	}
	if s, ok := sec[key].(string); ok {
		return s
	}
	return fallback
}

// Int returns an integer value from a section. Whole floats are accepted
// since JSON decoding produces float64 for every number.
func (c Config) Int(section, key string, fallback int) int {
	sec, ok := c.Section(section)
	if !ok {
		return fallback
	}
	switch v := sec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Bool returns a boolean value from a section, or fallback.
func (c Config) Bool(section, key string, fallback bool) bool {
	sec, ok := c.Section(section)
	if !ok {
		return fallback
	}
	if b, ok := sec[key].(bool); ok {
		return b
	}
	return fallback
}

// Strings returns a list value from a section with every string element
// kept. Absent keys and non-list values yield nil.
func (c Config) Strings(section, key string) []string {
	sec, ok := c.Section(section)
	if !ok {
		return nil
	}
	switch raw := sec[key].(type) {
	case []string:
		out := make([]string, len(raw))
		copy(out, raw)
		return out
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// DeepCopy returns a copy of the tree sharing no containers with the
// original.
func (c Config) DeepCopy() Config {
	copied, _ := deepCopyValue(map[string]any(c)).(map[string]any)
	return Config(copied)
}

// asMap normalizes the mapping shapes produced by JSON decoding, YAML
// decoding, and in-memory construction.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return map[string]any(m), true
	case Schema:
		return map[string]any(m), true
	default:
		return nil, false
	}
}
