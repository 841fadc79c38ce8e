package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEncoded indicates the framing or marker check failed: the data
	// was not produced by this codec.
	ErrNotEncoded = errors.New("codec: data not encoded with this codec")

	// ErrInvalid indicates the data is valid for its base format but not
	// supported by the codec, or the payload exceeds the carrier capacity.
	ErrInvalid = errors.New("codec: data invalid")

	// ErrDependency indicates the underlying format parser or writer
	// rejected the data.
	ErrDependency = errors.New("codec: dependency failure")
)

// Error carries the failure class alongside a human readable message.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

// Is reports whether target is the failure class of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotEncoded returns an ErrNotEncoded with an optional explanation.
func NotEncoded(msg string) error {
	return &Error{Kind: ErrNotEncoded, Msg: msg}
}

// Invalidf returns an ErrInvalid error with a formatted message.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}

// Dependency wraps an error produced by a format library.
func Dependency(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrDependency, Msg: err.Error(), Err: err}
}
