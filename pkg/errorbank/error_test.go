package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("x").StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("x").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFound("x").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal("x").StatusCode())
}

func TestFrom(t *testing.T) {
	appErr := NotFound("Order not found")
	assert.Same(t, appErr, From(appErr))

	wrapped := fmt.Errorf("handler: %w", appErr)
	assert.Same(t, appErr, From(wrapped))

	plain := errors.New("boom")
	converted := From(plain)
	require.NotNil(t, converted)
	assert.Equal(t, KindInternal, converted.Kind())
	assert.ErrorIs(t, converted, plain)

	assert.Nil(t, From(nil))
}

func TestErrorMessageAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := BadRequest("failed to create order", WithCause(cause), WithDetail("order_id", 7))

	assert.Equal(t, "failed to create order: disk full", err.Error())
	assert.Equal(t, "failed to create order", err.Message())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 7, err.Details()["order_id"])
}
