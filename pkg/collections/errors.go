package collections

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation requires an object that is
	// not present, such as updating an id that was never created.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidArgument is returned for caller contract violations, such
	// as a create payload that embeds the reserved "id" key or an update
	// with an empty id.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err is, or wraps, ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// errReservedID rejects payloads that try to smuggle an identifier in
// through the data map. The id lives next to the data, never inside it.
func errReservedID() error {
	return fmt.Errorf("data must not contain the reserved %q key: %w", "id", ErrInvalidArgument)
}

// errEmptyID rejects operations that require an identifier but got none.
func errEmptyID(op string) error {
	return fmt.Errorf("%s requires a non-empty id: %w", op, ErrInvalidArgument)
}
