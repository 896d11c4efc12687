package gif

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingBuffer is returned by the accessor when no buffer is supplied.
	ErrMissingBuffer = errors.New("gif: missing buffer")
	// ErrOutOfRange marks a read past the available bytes. It is the only
	// recoverable condition: more input may make the same read succeed.
	ErrOutOfRange = errors.New("gif: index out of range")

	ErrInvalidHeader         = errors.New("gif: invalid GIF 87a/89a header")
	ErrUnknownBlock          = errors.New("gif: unknown block")
	ErrUnknownExtension      = errors.New("gif: unknown extension label")
	ErrInvalidGraphicControl = errors.New("gif: invalid graphics control extension")
	ErrNoColorTable          = errors.New("gif: no color table")
	ErrFrameIndexOutOfRange  = errors.New("gif: frame index out of range")
	ErrFrameTooLarge         = errors.New("gif: frame too large")
)

// RangeError reports the offending index of a bounds-checked read.
type RangeError struct {
	Index  int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("gif: index %d is out of range (length %d)", e.Index, e.Length)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// FormatError describes a structural violation found while scanning blocks.
type FormatError struct {
	Offset int
	Value  byte
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: 0x%02x at offset %d", e.Err, e.Value, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

// StreamError wraps a failed decompression of a frame's image data.
type StreamError struct {
	Frame      int
	Diagnostic Diagnostic
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("gif: frame %d: %s", e.Frame, e.Diagnostic)
}

// IsNeedMoreData reports whether err only means that the buffer ends early.
func IsNeedMoreData(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}
