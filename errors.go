package slpz

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the distinguishable failure modes of the codec.
type ErrorKind uint8

// ErrorKinds
const (
	// MalformedSlp means the input is not a well-formed SLP file.
	MalformedSlp ErrorKind = iota
	// MalformedSlpz means an SLPZ header or its offsets are invalid.
	MalformedSlpz
	// CorruptCompressedBlob means the compressor rejected the input, or the
	// decompressed length did not match the header.
	CorruptCompressedBlob
	// MalformedReordered means decompressed bytes failed the reorder-inverse
	// consistency check.
	MalformedReordered
	// CompressorFailure means the compressor returned an opaque error during
	// encode.
	CompressorFailure
	// ShortBuffer means an API variant writing into a caller buffer would
	// overflow it.
	ShortBuffer
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedSlp:
		return "MalformedSlp"
	case MalformedSlpz:
		return "MalformedSlpz"
	case CorruptCompressedBlob:
		return "CorruptCompressedBlob"
	case MalformedReordered:
		return "MalformedReordered"
	case CompressorFailure:
		return "CompressorFailure"
	case ShortBuffer:
		return "ShortBuffer"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every exported operation in slpz.
type Error struct {
	Kind  ErrorKind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("slpz: %s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("slpz: %s: %s", e.Kind, e.msg)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, slpz.MalformedSlp) style checks via KindOf instead,
// or compare against a bare &Error{Kind: k}.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && other.msg == "" && other.cause == nil
}

func newErr(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// KindOf reports the ErrorKind of err if err is (or wraps) an *Error, and
// whether one was found.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
