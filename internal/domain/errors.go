// Package domain provides the interview types and canonical error types for the gateway.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of a failed interview request.
type ErrorType string

const (
	// ErrorTypeBadRequest indicates a missing or malformed request body.
	ErrorTypeBadRequest ErrorType = "bad_request"

	// ErrorTypeUpstream indicates the generative API answered with a non-2xx status.
	ErrorTypeUpstream ErrorType = "upstream"

	// ErrorTypeTimeout indicates the generative API did not answer in time.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeInvalidUpstreamResponse indicates the upstream body had no usable candidates.
	ErrorTypeInvalidUpstreamResponse ErrorType = "invalid_upstream_response"

	// ErrorTypeUnknown covers every other fault.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Client-facing messages. The survey front-end matches on some of these.
const (
	MessageNoData           = "No data provided"
	MessageInvalidBody      = "Invalid request body"
	MessageUpstreamFailed   = "Failed to get response from AI"
	MessageTimeout          = "Request timeout"
	MessageInvalidUpstream  = "Invalid response from AI"
	MessageInternal         = "Internal server error"
	MessageEndpointNotFound = "Endpoint not found"
	MessageMethodNotAllowed = "Method not allowed"
	MessageLogsUnavailable  = "Failed to retrieve logs"
)

// APIError is the single error type returned by the interview service.
// The boundary maps it to an HTTP status and a JSON envelope.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"-"`

	// Message is the human-readable error message sent as "error"
	Message string `json:"error"`

	// Details is optional extra context sent as "details"
	Details string `json:"details,omitempty"`

	// UpstreamStatus is the status code returned by the generative API, if any
	UpstreamStatus int `json:"-"`

	// StatusCode overrides the status derived from Type
	StatusCode int `json:"-"`

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// HTTPStatusCode returns the HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeBadRequest:
		return http.StatusBadRequest
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeUpstream, ErrorTypeInvalidUpstreamResponse, ErrorTypeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithDetails adds a details string to the error.
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithCause records the underlying error for errors.Is/As.
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// ErrBadRequest creates a bad request error.
func ErrBadRequest(message string) *APIError {
	return NewAPIError(ErrorTypeBadRequest, message)
}

// ErrNoData is the bad request returned for an empty or missing body.
func ErrNoData() *APIError {
	return ErrBadRequest(MessageNoData)
}

// ErrUpstream creates an error for a non-2xx upstream status.
func ErrUpstream(status int) *APIError {
	e := NewAPIError(ErrorTypeUpstream, MessageUpstreamFailed).
		WithDetails(fmt.Sprintf("Status code: %d", status))
	e.UpstreamStatus = status
	return e
}

// ErrTimeout creates an upstream timeout error.
func ErrTimeout() *APIError {
	return NewAPIError(ErrorTypeTimeout, MessageTimeout)
}

// ErrInvalidUpstreamResponse creates an error for an upstream body without candidates.
func ErrInvalidUpstreamResponse() *APIError {
	return NewAPIError(ErrorTypeInvalidUpstreamResponse, MessageInvalidUpstream)
}

// ErrUnknown wraps any other fault. The cause's text is exposed as details.
func ErrUnknown(err error) *APIError {
	e := NewAPIError(ErrorTypeUnknown, MessageInternal).WithCause(err)
	if err != nil {
		e.Details = err.Error()
	}
	return e
}
