// Package apperr defines the error kinds shared by every runtime component and the
// panic message posted to the Event Host when an error is fatal.
package apperr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
)

// Kind classifies an error. Kind implements error so callers can test for a kind with
// errors.Is(err, apperr.NotFound).
type Kind int

const (
	Unknown Kind = iota
	DisabledHandle
	InvalidKey
	UnsafetyCache
	NotFound
	NotDirectory
	NotFile
	AlreadyExists
	PermissionDenied
	Interrupted
	UnsupportedPlatform
	Unsupported
	UnexpectedEOF
	OutOfMemory
	IOOther
	ParsingError
	Device
	ChannelClosed
)

var kindNames = [...]string{
	Unknown:             "unknown",
	DisabledHandle:      "disabled handle",
	InvalidKey:          "invalid key",
	UnsafetyCache:       "unsafety cache",
	NotFound:            "not found",
	NotDirectory:        "not a directory",
	NotFile:             "not a file",
	AlreadyExists:       "already exists",
	PermissionDenied:    "permission denied",
	Interrupted:         "interrupted",
	UnsupportedPlatform: "unsupported platform",
	Unsupported:         "unsupported",
	UnexpectedEOF:       "unexpected eof",
	OutOfMemory:         "out of memory",
	IOOther:             "io error",
	ParsingError:        "parsing error",
	Device:              "device error",
	ChannelClosed:       "channel closed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) Error() string {
	return k.String()
}

// Error is the concrete error produced by the runtime.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "bundle.get"
	Path string // asset path or resource label, optional
	Err  error  // underlying cause, optional
}

// New creates an Error of the given kind.
//
// Parameters:
//   - kind: the error classification
//   - op: the failing operation
//   - path: the asset path or resource label involved (may be empty)
//
// Returns:
//   - *Error: the new error
func New(kind Kind, op, path string) *Error {
	return &Error{Kind: kind, Op: op, Path: path}
}

// Wrap creates an Error of the given kind wrapping cause.
//
// Parameters:
//   - kind: the error classification
//   - op: the failing operation
//   - path: the asset path or resource label involved (may be empty)
//   - cause: the underlying error
//
// Returns:
//   - *Error: the new error
func Wrap(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind carried by err, or Unknown if err carries none.
//
// Parameters:
//   - err: the error to classify
//
// Returns:
//   - Kind: the kind found in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unknown
}

// FromIO maps an operating system error onto the pass-through kinds.
// Returns nil when err is nil.
//
// Parameters:
//   - op: the failing operation
//   - path: the file path involved
//   - err: the error returned by the os or io package
//
// Returns:
//   - error: an *Error with the mapped Kind, or nil
func FromIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	kind := IOOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = NotFound
	case errors.Is(err, fs.ErrPermission):
		kind = PermissionDenied
	case errors.Is(err, fs.ErrExist):
		kind = AlreadyExists
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		kind = UnexpectedEOF
	case errors.Is(err, syscall.EINTR):
		kind = Interrupted
	case errors.Is(err, syscall.ENOMEM):
		kind = OutOfMemory
	case errors.Is(err, syscall.ENOTDIR):
		kind = NotDirectory
	case errors.Is(err, syscall.EISDIR):
		kind = NotFile
	}
	return Wrap(kind, op, path, err)
}

// PanicMessage is the payload of a fatal error posted to the Event Host.
type PanicMessage struct {
	Title  string
	Detail string
}

// Panicf builds a PanicMessage with a formatted detail line.
//
// Parameters:
//   - title: the short summary shown as the dialog title
//   - format: fmt-style format for the detail
//   - args: format arguments
//
// Returns:
//   - PanicMessage: the message
func Panicf(title, format string, args ...any) PanicMessage {
	return PanicMessage{Title: title, Detail: fmt.Sprintf(format, args...)}
}

func (p PanicMessage) String() string {
	return p.Title + ": " + p.Detail
}
