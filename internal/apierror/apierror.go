// Package apierror defines the error taxonomy returned by the HTTP API and the
// single responder that renders it.
package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidhub/backend/internal/logging"
)

// Error is a failure with a declared HTTP status and a client-facing message.
type Error struct {
	Status  int
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Wrap attaches an underlying cause without changing the client-facing message.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// New constructs an Error with the given status.
func New(status int, message string, details ...string) *Error {
	return &Error{Status: status, Message: message, Errors: details}
}

func BadRequest(message string, details ...string) *Error {
	return New(http.StatusBadRequest, message, details...)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// Internal hides the cause from the client; it is logged and, in development, echoed as the stack.
func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// From normalises any error into an *Error. Unknown errors become a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		if apiErr.Status < 100 || apiErr.Status > 599 {
			clone := *apiErr
			clone.Status = http.StatusInternalServerError
			return &clone
		}
		return apiErr
	}
	return Internal(http.StatusText(http.StatusInternalServerError), err)
}

// Body is the error envelope shared by every endpoint.
type Body struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Stack   string   `json:"stack,omitempty"`
}

// Write renders err as the error envelope. includeStack exposes the cause chain
// and must only be set outside production.
func Write(ctx context.Context, w http.ResponseWriter, err error, includeStack bool) {
	apiErr := From(err)
	if apiErr == nil {
		return
	}

	body := Body{
		Success: false,
		Message: apiErr.Message,
		Errors:  apiErr.Errors,
	}
	if body.Errors == nil {
		body.Errors = []string{}
	}
	if includeStack {
		body.Stack = err.Error()
	}

	logger := logging.FromContext(ctx)
	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", apiErr.Status, "message", apiErr.Message, "error", err)
	default:
		logger.Warn("request returned client error", "status", apiErr.Status, "message", apiErr.Message, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		logger.Error("encode error body", "status", apiErr.Status, "error", encErr)
	}
}
