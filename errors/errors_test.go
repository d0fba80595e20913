package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, UpstreamError, "ticketing API failed")

	assert.Equal(t, UpstreamError, wrappedErr.Type)
	assert.Equal(t, "ticketing API failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 502, wrappedErr.HTTPStatus)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ServerError, "nothing"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Event", "G5vYZ9")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Event not found", err.Message)
	assert.Equal(t, "ID: G5vYZ9", err.Detail)
	assert.Equal(t, 404, err.GetHTTPStatus())
}

func TestNewStorageError(t *testing.T) {
	originalErr := fmt.Errorf("connection refused")
	err := NewStorageError(originalErr)
	assert.Equal(t, StorageError, err.Type)
	assert.Equal(t, "Please try again later", err.Detail)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.Equal(t, originalErr, err.Raw)
}

func TestLocationUnavailable(t *testing.T) {
	err := LocationUnavailable(fmt.Errorf("permission denied"))
	assert.Equal(t, GeolocationError, err.Type)
	assert.Equal(t, "permission denied", err.Detail)
	assert.Equal(t, 503, err.GetHTTPStatus())
}

func TestGetHTTPStatus_FallsBackToType(t *testing.T) {
	err := &AppError{Type: RateLimitError}
	assert.Equal(t, 429, err.GetHTTPStatus())
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: missing", (&AppError{Type: NotFoundError, Message: "missing"}).Error())
	assert.Equal(t, "NOT_FOUND: missing (id 1)", (&AppError{Type: NotFoundError, Message: "missing", Detail: "id 1"}).Error())
}
