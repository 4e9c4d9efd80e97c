package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("events overlapping detected")
	ErrNotFound   = errors.New("event not found")
)

// Invalidf wraps a formatted message as a validation error.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
