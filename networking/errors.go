package networking

import (
	"errors"
	"fmt"
	"net"
)

// FormatError reports a message that could not be encoded or decoded.
// Only the offending message is affected.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "malformed message: " + e.Reason
}

func formatErrorf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// TransportError wraps a socket level failure of a single connection or worker.
type TransportError struct {
	Op   string // dial, write, read, listen...
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Addr + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is or wraps a FormatError
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsTimeout reports whether err is a deadline expiry rather than a real failure
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
