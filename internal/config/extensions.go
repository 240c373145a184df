package config

import (
	"fmt"

	apperrors "github.com/envstack/envstack/internal/errors"
)

// DefaultsProvider contributes a factory default fragment merged into the
// generated configuration file.
type DefaultsProvider interface {
	FactoryDefaults() map[string]any
}

// SchemaProvider contributes a schema fragment merged into the validation
// schema.
type SchemaProvider interface {
	ConfigSchema() Schema
}

// Extension is a registered config handler. Handlers extend both the factory
// defaults and the validation schema; partial implementations are rejected at
// registration time.
type Extension interface {
	DefaultsProvider
	SchemaProvider
}

// AsExtension checks that handler implements the full Extension contract and
// reports which capability is missing otherwise.
func AsExtension(handler any) (Extension, error) {
	if _, ok := handler.(DefaultsProvider); !ok {
		return nil, apperrors.NewRegistrationError(
			fmt.Sprintf("type %T cannot be a config handler, missing FactoryDefaults()", handler))
	}
	if _, ok := handler.(SchemaProvider); !ok {
		return nil, apperrors.NewRegistrationError(
			fmt.Sprintf("type %T cannot be a config handler, missing ConfigSchema()", handler))
	}
	return handler.(Extension), nil
}

// ExtendedSchema merges every extension's schema fragment into the base
// schema.
func ExtendedSchema(base Schema, extensions []Extension) Schema {
	fragments := make([]Schema, 0, len(extensions))
	for _, ext := range extensions {
		fragments = append(fragments, ext.ConfigSchema())
	}
	return Extend(base, fragments...)
}

// ExtendedDefaults merges every extension's factory default fragment into
// the base defaults.
func ExtendedDefaults(base Config, extensions []Extension) Config {
	fragments := make([]map[string]any, 0, len(extensions))
	for _, ext := range extensions {
		fragments = append(fragments, ext.FactoryDefaults())
	}
	return MergeDefaults(base, fragments...)
}
