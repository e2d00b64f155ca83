package domain

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "error with type and message",
			err:      ErrNoData(),
			expected: "bad_request: No data provided",
		},
		{
			name:     "error with details",
			err:      ErrUpstream(503),
			expected: "upstream: Failed to get response from AI (Status code: 503)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected int
	}{
		{
			name:     "bad request",
			err:      ErrNoData(),
			expected: http.StatusBadRequest,
		},
		{
			name:     "upstream status",
			err:      ErrUpstream(http.StatusServiceUnavailable),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "timeout",
			err:      ErrTimeout(),
			expected: http.StatusGatewayTimeout,
		},
		{
			name:     "invalid upstream response",
			err:      ErrInvalidUpstreamResponse(),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "unknown",
			err:      ErrUnknown(errors.New("boom")),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "explicit override",
			err:      ErrBadRequest("nope").WithStatusCode(http.StatusUnprocessableEntity),
			expected: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.expected {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestErrUpstream_Details(t *testing.T) {
	err := ErrUpstream(503)
	if !strings.Contains(err.Details, "503") {
		t.Errorf("Details = %q, want it to contain 503", err.Details)
	}
	if err.UpstreamStatus != 503 {
		t.Errorf("UpstreamStatus = %d, want 503", err.UpstreamStatus)
	}
}

func TestErrUnknown_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrUnknown(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details != "connection reset" {
		t.Errorf("Details = %q, want %q", err.Details, "connection reset")
	}

	var apiErr *APIError
	if !errors.As(error(err), &apiErr) || apiErr.Type != ErrorTypeUnknown {
		t.Errorf("errors.As did not recover an unknown APIError")
	}
}
