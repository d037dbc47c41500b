package codec

import (
	"errors"
	"fmt"
)

// Decode failure reasons, wrapped by [DecodeError].
var (
	ErrEmptyFrame     = errors.New("empty frame")
	ErrMissingCommand = errors.New("missing command")
	ErrNoParams       = errors.New("missing params")
	ErrMissingSender  = errors.New("missing sender")
	ErrBadParams      = errors.New("bad params")
)

// Encode failures for outgoing chat messages.
var (
	// ErrEmptyBody is returned when the body is empty after trimming.
	ErrEmptyBody = errors.New("message is empty")
	// ErrTooLong is returned when the trimmed body exceeds MaxBodyBytes.
	ErrTooLong = fmt.Errorf("message is longer than %d bytes", MaxBodyBytes)
)

// DecodeError reports a frame that could not be decoded. It is never fatal:
// callers log it and continue with the next frame.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame %q: %v", e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
