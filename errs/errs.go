// Package errs provides the curated set of sentinel error kinds used
// throughout palo. A Kind can be compared with errors.Is regardless of
// how much context has been wrapped around it.
package errs

import "fmt"

// Kind identifies one of the error categories from the error handling
// design: InvalidROM, InvalidImage, CorruptFS, NotFound, NotADirectory,
// OutOfSpace, InvalidOpcode, MicrocodeFatal, DeviceFatal, IoError,
// TransportError.
type Kind string

const (
	InvalidROM     Kind = "invalid ROM"
	InvalidImage   Kind = "invalid disk image"
	CorruptFS      Kind = "corrupt filesystem"
	NotFound       Kind = "not found"
	NotADirectory  Kind = "not a directory"
	OutOfSpace     Kind = "out of space"
	InvalidOpcode  Kind = "invalid opcode"
	MicrocodeFatal Kind = "microcode fatal error"
	DeviceFatal    Kind = "device fatal error"
	IoError        Kind = "I/O error"
	TransportError Kind = "transport error"
)

// Error is a Kind decorated with a specific message. It satisfies the
// standard error interface and supports errors.Is against its Kind.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Is reports whether target is the same Kind, so errors.Is(err,
// errs.NotFound) works when err wraps an *Error of that Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an *Error of the given Kind with a plain message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

// Errorf creates an *Error of the given Kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Sentinel values usable directly with errors.Is as bare markers for
// each Kind (no message attached).
var (
	ErrInvalidROM     = &Error{Kind: InvalidROM}
	ErrInvalidImage   = &Error{Kind: InvalidImage}
	ErrCorruptFS      = &Error{Kind: CorruptFS}
	ErrNotFound       = &Error{Kind: NotFound}
	ErrNotADirectory  = &Error{Kind: NotADirectory}
	ErrOutOfSpace     = &Error{Kind: OutOfSpace}
	ErrInvalidOpcode  = &Error{Kind: InvalidOpcode}
	ErrMicrocodeFatal = &Error{Kind: MicrocodeFatal}
	ErrDeviceFatal    = &Error{Kind: DeviceFatal}
	ErrIoError        = &Error{Kind: IoError}
	ErrTransportError = &Error{Kind: TransportError}
)
