package boop

import (
	"errors"
	"fmt"
)

// BufTooShortError means the buffer did not hold enough bytes to complete
// the region under decode. It is the only ordinary control-flow error in
// the codec: callers should read more bytes and retry. The buffer is left
// untouched on this error, so a retry with more data picks up exactly
// where the previous call left off.
type BufTooShortError struct {
	// Region names what was being decoded: "meta data byte", "u8",
	// "string header", "array element", and so on.
	Region string
}

func (e *BufTooShortError) Error() string {
	return fmt.Sprintf("boop: buffer too short for %s", e.Region)
}

// UnknownTagError means the leading tag byte does not match any variant
// in the wire format. Unlike BufTooShortError this is not recoverable for
// the current frame.
type UnknownTagError struct {
	Tag byte
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("boop: unknown tag byte 0x%02x", e.Tag)
}

// ErrDepthExceeded is returned when decoding a nested Array would exceed
// MaxDepth. It guards the recursive decoder against unbounded stack growth
// on adversarial input.
var ErrDepthExceeded = errors.New("boop: array recursion depth exceeded")

// ErrLengthOverflow is returned by Encode when a String, Error message, or
// Array carries more than 65535 bytes or elements and therefore has no
// representable length prefix.
var ErrLengthOverflow = errors.New("boop: length exceeds 65535")
