package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates rejected caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrStorage indicates a persistence failure.
	ErrStorage = errors.New("storage failure")
	// ErrFormat indicates malformed persisted or supplied data.
	ErrFormat = errors.New("malformed data")
)

// Validationf builds an error that matches ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf builds an error that matches ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Storagef builds an error that matches ErrStorage.
func Storagef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStorage)...)
}

// Formatf builds an error that matches ErrFormat.
func Formatf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrFormat)...)
}
