package gvnc

import "fmt"

// ErrorKind classifies why a Client tore down, distinguishing an I/O
// drop from a protocol violation, a rejected auth, and a resource
// exhaustion, instead of collapsing every teardown into one generic
// error.
type ErrorKind int

const (
	ErrKindNone ErrorKind = iota
	ErrKindIO
	ErrKindProtocol
	ErrKindAuth
	ErrKindResource
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindIO:
		return "io"
	case ErrKindProtocol:
		return "protocol"
	case ErrKindAuth:
		return "auth"
	case ErrKindResource:
		return "resource"
	default:
		return "none"
	}
}

// connError is what the I/O and decode helpers panic with. It is
// recovered exactly once, at the top of the engine's run loop, and
// translated into the sticky error flag plus a disconnected event — the
// same failf/panic/recover idiom bradfitz-rfbgo/rfb.go uses, generalized
// with a classification so the host can tell an I/O drop from a protocol
// violation from an auth rejection.
type connError struct {
	kind ErrorKind
	err  error
}

func (e *connError) Error() string { return fmt.Sprintf("%s: %v", e.kind, e.err) }
func (e *connError) Unwrap() error { return e.err }

// ErrorKind reports the classification of a *connError, the method
// Client.LastError relies on for callers to distinguish failure modes.
func (e *connError) ErrorKind() ErrorKind { return e.kind }

func failf(kind ErrorKind, format string, args ...interface{}) {
	panic(&connError{kind: kind, err: fmt.Errorf(format, args...)})
}

func failIO(err error, context string) {
	if err != nil {
		failf(ErrKindIO, "%s: %w", context, err)
	}
}
