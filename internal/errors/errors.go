// Package errors provides domain-specific error types for shout.
//
// These types carry structured context (operation, address, frame
// detail) that lets callers decide whether a failure kills one session
// or is safe to ride out, and gives better diagnostics than plain
// string wrapping.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrMessageTooLong = errors.New("message exceeds maximum frame size")
	ErrInvalidUTF8    = errors.New("message is not valid UTF-8")
	ErrServerFull     = errors.New("connection limit reached")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a transport operation.
// It terminates the session it occurred on, never the whole process.
type NetworkError struct {
	Op        string // operation: "dial", "listen", "accept", "write", "read"
	Addr      string // network address involved
	Err       error  // underlying error
	Temporary bool   // whether the owning loop may carry on
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Temporary {
		s += " (temporary)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FrameError represents a wire frame that could not be decoded: the
// stream closed before the declared payload arrived, or the payload
// was not valid UTF-8. No partial-data recovery is attempted; the
// session carrying the frame is torn down.
type FrameError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("malformed frame (%s): %v", e.Op, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting whether the
// underlying error is temporary.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Temporary: classifyTemporary(err),
	}
}

// Malformed creates a FrameError for the given frame operation.
func Malformed(op string, err error) *FrameError {
	return &FrameError{Op: op, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsMalformed reports whether err is a framing failure.
func IsMalformed(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe)
}

// IsTemporary reports whether err represents a condition the owning
// loop may ride out (used by the accept loop; sessions never retry).
func IsTemporary(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Temporary
	}
	return classifyTemporary(err)
}

// IsClosed reports whether err is an expected consequence of one side
// shutting the connection down: EOF, a closed network connection, or a
// closed pipe. These end a session quietly rather than as faults.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, ErrSessionClosed) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// classifyTemporary inspects standard library error types.
func classifyTemporary(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use shout/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }
