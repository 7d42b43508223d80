package errors

import (
	"fmt"
	"testing"

	"gorarity/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_Codes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wrap     func(error, string) error
		expected string
	}{
		{"validation", core.NewValidationError("1", "hat", nil, "bad"), Wrap, CodeValidationError},
		{"unsupported", core.NewUnsupportedCollectionError("sum", []string{"level"}), Wrap, CodeUnsupportedCollection},
		{"invariant", core.NewInvariantViolation("broken"), Wrap, CodeInvariantViolation},
		{"not found", core.NewTokenNotFoundError("9"), Wrap, CodeNotFound},
		{"plain", fmt.Errorf("disk on fire"), Wrap, CodeInternalError},
		{"plain input", fmt.Errorf("not json"), WrapInvalidInput, CodeInvalidInput},
		{"validation input", core.NewValidationError("1", "hat", nil, "bad"), WrapInvalidInput, CodeValidationError},
		{"app error", ConfigInvalid("workers"), WrapInvalidInput, CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap(tt.err, "context")
			assert.Equal(t, tt.expected, GetCode(err))
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "context: ")
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, WrapInvalidInput(nil, "context"))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("bare")))
}
