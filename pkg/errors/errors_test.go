package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeHelpers(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("bad input")))
	assert.True(t, IsNotFound(NewNotFoundError("record")))
	assert.False(t, IsNotFound(NewValidationError("bad input")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFoundError("record")

	assert.Equal(t, "record not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	cause := errors.New("connection refused")

	err := Wrap(cause, "scan failed")

	appErr := GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.ErrorIs(t, err, cause)
}

func TestWrap_KeepsAppErrorType(t *testing.T) {
	inner := NewDatabaseError("batch write", errors.New("throttled"))

	err := Wrap(inner, "bulk create aborted")

	appErr := GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeDatabase, appErr.Type)
	assert.Contains(t, appErr.Message, "bulk create aborted")
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "whatever"))
	assert.NoError(t, Wrapf(nil, "whatever %d", 1))
}

func TestErrorString(t *testing.T) {
	err := NewDatabaseError("get record", fmt.Errorf("boom"))

	assert.Contains(t, err.Error(), "DATABASE")
	assert.Contains(t, err.Error(), "boom")
}
