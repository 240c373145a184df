package logger

import (
	"log/slog"
	"testing"

	"github.com/envstack/envstack/internal/constants"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name  string
		env   constants.Environment
		level slog.Level
	}{
		{
			name:  "production environment with info level",
			env:   constants.Production,
			level: slog.LevelInfo,
		},
		{
			name:  "development environment with debug level",
			env:   constants.Development,
			level: slog.LevelDebug,
		},
		{
			name:  "CLI environment with warn level",
			env:   constants.CLI,
			level: slog.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Initialize(tt.env, tt.level)

			assert.NotNil(t, logger, "Logger should not be nil")
			assert.Equal(t, logger, slog.Default(), "Logger should be set as default")
		})
	}
}
