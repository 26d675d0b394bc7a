package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Common error types for the billing console
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("identifier and password are required")
	ErrAuthRequestFailed  = errors.New("auth request failed")

	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available: %w", ErrSessionExpired)
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionChanged   = errors.New("session changed during refresh")

	// Navigation errors
	ErrNoDashboard = errors.New("no dashboard available for user roles")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

// APIError is a non-2xx response from the backend. Message carries the
// backend's text verbatim.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"errorCode,omitempty"`
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the backend rejected the credentials or token.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// errorBody accepts both the backend's ErrorResponse and the {"error": "..."}
// shape some endpoints use.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
	Error      any    `json:"error"`
	Path       string `json:"path"`
}

// DecodeAPIError builds an APIError from a non-2xx response. The body is
// read but not closed.
func DecodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var body errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.ErrorCode
		apiErr.Path = body.Path
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			switch v := body.Error.(type) {
			case string:
				apiErr.Message = v
			case map[string]any:
				if msg, ok := v["message"].(string); ok {
					apiErr.Message = msg
				}
				if code, ok := v["code"].(string); ok && apiErr.Code == "" {
					apiErr.Code = code
				}
			}
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 512 {
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// Message returns the backend's verbatim message when err carries an
// APIError, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join joins errors so that both are visible to Is and As.
func Join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
