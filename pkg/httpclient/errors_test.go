package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func googleError(code int, status, message string) string {
	return fmt.Sprintf(`{"error":{"code":%d,"message":%q,"status":%q}}`, code, message, status)
}

func TestParseResponseError_Structured(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		upstream string
		sentinel error
	}{
		{"bad request", http.StatusBadRequest, "INVALID_ARGUMENT", apperrors.ErrInvalidInput},
		{"not found", http.StatusNotFound, "NOT_FOUND", apperrors.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, "UNAUTHENTICATED", apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "PERMISSION_DENIED", apperrors.ErrUnauthorized},
		{"quota", http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", apperrors.ErrServiceUnavail},
		{"unavailable", http.StatusServiceUnavailable, "UNAVAILABLE", apperrors.ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := makeResponse(tt.status, googleError(tt.status, tt.upstream, "upstream said no"))
			err := ParseResponseError(resp, "gemini")
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseResponseError_UnmappedStatusKeepsUpstreamCode(t *testing.T) {
	resp := makeResponse(http.StatusRequestTimeout, googleError(408, "DEADLINE_EXCEEDED", "too slow"))
	err := ParseResponseError(resp, "gemini")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DEADLINE_EXCEEDED", appErr.Code)
	assert.Equal(t, http.StatusRequestTimeout, appErr.Status)
	assert.Contains(t, appErr.Message, "gemini: too slow")
}

func TestParseResponseError_ServerError(t *testing.T) {
	resp := makeResponse(http.StatusInternalServerError, googleError(500, "INTERNAL", "boom"))
	err := ParseResponseError(resp, "gemini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini server error (500/INTERNAL): boom")
}

func TestParseResponseError_Unstructured(t *testing.T) {
	resp := makeResponse(http.StatusBadGateway, "<html>bad gateway</html>")
	err := ParseResponseError(resp, "gemini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini returned status 502")
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
