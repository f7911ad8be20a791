package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesSentinelByCode(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("assemble: %w", NewProcessingError("model call failed", cause))

	assert.True(t, IsProcessing(err))
	assert.False(t, IsUserInput(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "PROCESSING: model call failed: boom", errors.Unwrap(err).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NewUserInputError("two photos required", nil), http.StatusBadRequest},
		{NewNotFoundError("job not found"), http.StatusNotFound},
		{NewConflictError("job still running"), http.StatusConflict},
		{NewProcessingError("model call failed", errors.New("503")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestPublicMessage_HidesCause(t *testing.T) {
	err := NewProcessingError("model call failed", errors.New("secret upstream detail"))
	assert.Equal(t, "model call failed", PublicMessage(err))
	assert.Equal(t, "internal error", PublicMessage(errors.New("x")))
}
