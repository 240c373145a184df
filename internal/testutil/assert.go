// Package testutil provides shared assertion helpers for coded application errors.
package testutil

import (
	stderrors "errors"
	"testing"

	apperrors "github.com/envstack/envstack/internal/errors"

	"github.com/stretchr/testify/assert"
)

// AssertErrorType checks if the error is of a specific type using errors.Is.
func AssertErrorType(t *testing.T, err, target error, _ ...any) bool {
	t.Helper()
	if !stderrors.Is(err, target) {
		return assert.Fail(t, "Error type mismatch", "Expected error type %T, got %T", target, err)
	}
	return true
}

// AssertAppErrorCode checks if the error has a specific error code.
func AssertAppErrorCode(t *testing.T, err error, expectedCode string, _ ...any) bool {
	t.Helper()
	code := apperrors.GetErrorCode(err)
	if code != expectedCode {
		return assert.Fail(t, "Error code mismatch", "Expected error code %q, got %q", expectedCode, code)
	}
	return true
}

// AssertValidationPath checks if the error carries a specific config path.
func AssertValidationPath(t *testing.T, err error, expectedPath string, _ ...any) bool {
	t.Helper()
	path := apperrors.GetErrorPath(err)
	if path != expectedPath {
		return assert.Fail(t, "Config path mismatch", "Expected config path %q, got %q", expectedPath, path)
	}
	return true
}
