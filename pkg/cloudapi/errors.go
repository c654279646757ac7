package cloudapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrAuthenticationFailed is returned when a signed request is still
	// unauthorized after the single credential-source swap attempt (or
	// when no alternate source was available to try).
	ErrAuthenticationFailed = errors.New("cloudapi: authentication failed")

	// ErrWaitAborted is returned when a state-polling helper is stopped
	// by its context before the target state was observed.
	ErrWaitAborted = errors.New("cloudapi: wait aborted")
)

// APIError is a non-2xx response from the CloudAPI. The response body is
// preserved verbatim because the API returns a machine-readable error
// payload that callers may want to inspect.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code and Message are the decoded error payload fields, when the
	// body carried the CloudAPI's {"code": ..., "message": ...} shape.
	Code    string
	Message string

	// Body is the raw response body.
	Body []byte
}

func (e *APIError) Error() string {
	if e.Code != "" || e.Message != "" {
		return fmt.Sprintf("cloudapi: request failed with status %d: %s: %s",
			e.StatusCode, e.Code, e.Message)
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("cloudapi: request failed with status %d: %s",
			e.StatusCode, e.Body)
	}
	return fmt.Sprintf("cloudapi: request failed with status %d", e.StatusCode)
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       body,
	}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	return apiErr
}
