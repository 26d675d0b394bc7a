package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	errs "github.com/jrsteele09/go-billing-console/internal/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess        = 0 // Command completed
	ExitFailure        = 1 // Backend or transport failure
	ExitCommandError   = 2 // Bad arguments or configuration
	ExitNotPermitted   = 3 // The guard sent the command elsewhere
	ExitSessionExpired = 4 // The session ended and the user must log in again
)

// MsgSessionExpired is printed when the session ended during a command.
const MsgSessionExpired = "session expired, please log in again"

// MsgNotLoggedIn is printed when a command needs a session and there is none.
const MsgNotLoggedIn = "not logged in, run billingctl login"

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from err. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Message
	}
	return err.Error()
}

// commandError maps a failure to the message the user sees.
func commandError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return err
	case errs.Is(err, errs.ErrSessionExpired):
		return &ExitError{Code: ExitSessionExpired, Message: MsgSessionExpired, Err: err}
	case errs.Is(err, errs.ErrNotAuthenticated):
		return &ExitError{Code: ExitSessionExpired, Message: MsgNotLoggedIn, Err: err}
	case errs.Is(err, errs.ErrAuthRequestFailed):
		return &ExitError{Code: ExitFailure, Message: "request to the billing service failed", Err: err}
	case errs.Is(err, errs.ErrInvalidRequest), errs.Is(err, errs.ErrMissingCredentials):
		return &ExitError{Code: ExitCommandError, Message: errs.Message(err), Err: err}
	default:
		return &ExitError{Code: ExitFailure, Message: errs.Message(err)}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
