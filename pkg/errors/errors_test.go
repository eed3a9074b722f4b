package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "grade record not found"))
	got := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "grade record not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "semester required")
	assert.Equal(t, "semester required", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestHelpers(t *testing.T) {
	cause := fmt.Errorf("boom")
	internal := Internal(cause, "failed to load tasks")
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "failed to load tasks: boom", internal.Error())

	invalid := Validation(cause, "invalid payload")
	assert.Equal(t, ErrValidation.Code, invalid.Code)
	assert.ErrorIs(t, invalid, cause)
}
