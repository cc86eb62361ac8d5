package core

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a slice or fixed read would leave the view it is relative to.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrMalformedHeader is returned when a structural invariant is violated independent of bounds.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrIndexOutOfRange is returned when an element index is not below the decoded size.
	ErrIndexOutOfRange = errors.New("index out of range")

	ErrUnknownResourceType = errors.New("unknown resource type")
	ErrLoaderExists        = errors.New("loader already registered")
)

// DecodeError reports which field and byte range triggered a decode failure.
// Err is always one of the sentinel errors above.
type DecodeError struct {
	Err    error
	Field  string
	Offset int
	Length int
	Limit  int
	Detail string
}

func (e *DecodeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrOutOfBounds):
		return fmt.Sprintf("%s: %v: [%d, %d+%d) exceeds %d", e.Field, e.Err, e.Offset, e.Offset, e.Length, e.Limit)
	case errors.Is(e.Err, ErrIndexOutOfRange):
		return fmt.Sprintf("%s: %v: index %d, size %d", e.Field, e.Err, e.Offset, e.Limit)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Detail)
		}
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// OutOfBounds builds an ErrOutOfBounds error for the byte range [offset, offset+length) of a view of size limit.
func OutOfBounds(field string, offset, length, limit int) error {
	return &DecodeError{Err: ErrOutOfBounds, Field: field, Offset: offset, Length: length, Limit: limit}
}

// Malformed builds an ErrMalformedHeader error.
func Malformed(field string, format string, args ...interface{}) error {
	return &DecodeError{Err: ErrMalformedHeader, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// IndexOutOfRange builds an ErrIndexOutOfRange error.
func IndexOutOfRange(field string, index, size int) error {
	return &DecodeError{Err: ErrIndexOutOfRange, Field: field, Offset: index, Limit: size}
}
