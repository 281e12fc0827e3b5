/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error
interface and pairs a stable client-side error code with the user-facing notice
text displayed by the UI.
*/
package errs

import (
	"fmt"
	"strings"

	"chatterm/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the client.
// It wraps the Go error interface, adding a client-side error code and the
// notice text shown to the user.
type CustomError struct {
	// Code is the client error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string
}

// Error implements the standard Go error interface. It returns a formatted
// error string containing the error code and message.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d: %s", e.Code, e.Message)
}

// NewError constructs and returns a new *CustomError instance based on a predefined error code.
// The optional details parameter allows for formatting arguments (printf-style) to be supplied
// for the error message. If an unknown code is provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
		}
	}

	customErr := templateErr

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(
				originalErr,
				"Handling ErrUnknown with underlying error",
			)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			)
		}
	}

	return &customErr
}

// WithMessage constructs a *CustomError with the given code but a caller-supplied
// message, used when the server's own response body is the text the user should
// see. An empty message falls back to the code's predefined text.
func WithMessage(code int, message string) *CustomError {
	if strings.TrimSpace(message) == "" {
		return NewError(code)
	}

	customErr := NewError(code)
	customErr.Message = message
	return customErr
}
