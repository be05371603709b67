package membuf

import "github.com/pkg/errors"

var (
	// ErrAllocation is returned when storage cannot be obtained.
	ErrAllocation = errors.New("membuf: allocation failed")
	// ErrInvalidArgument is returned for zero, negative or overflowing sizes.
	ErrInvalidArgument = errors.New("membuf: invalid argument")
	// ErrReleased is returned when a destroyed or expanded-away buffer is grown.
	ErrReleased = errors.New("membuf: buffer released")
)
