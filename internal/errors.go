package internal

import (
	"errors"
	"fmt"
)

// ErrorCode classifies scan errors so callers can branch on them.
type ErrorCode string

const (
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrNotTextFile   ErrorCode = "NOT_TEXT"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
)

// ErrNotText is wrapped by every NOT_TEXT error.
var ErrNotText = errors.New("not a text file")

// ScanError carries a code, the offending path (if any) and the cause.
type ScanError struct {
	Code    ErrorCode
	Message string
	Path    string
	Wrapped error
}

func (e *ScanError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

func (e *ScanError) Unwrap() error { return e.Wrapped }

// Is matches any *ScanError with the same code.
func (e *ScanError) Is(target error) bool {
	var t *ScanError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewConfigError builds a CONFIG_INVALID error with a formatted message.
func NewConfigError(format string, args ...any) *ScanError {
	return &ScanError{Code: ErrConfigInvalid, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and path to err. Returns nil for a nil err.
func Wrap(err error, code ErrorCode, path, message string) error {
	if err == nil {
		return nil
	}
	return &ScanError{Code: code, Message: message, Path: path, Wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, path, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &ScanError{Code: code, Message: fmt.Sprintf(format, args...), Path: path, Wrapped: err}
}

// IsCode reports whether any error in err's chain is a *ScanError with code.
func IsCode(err error, code ErrorCode) bool {
	var se *ScanError
	for err != nil {
		if errors.As(err, &se) {
			if se.Code == code {
				return true
			}
			err = se.Wrapped
			continue
		}
		return false
	}
	return false
}
