// Package apperr defines the error kinds shared by the domain services and
// mapped to HTTP responses at the handler boundary.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrInsufficientStock and ErrEmptyCart are validation failures with
	// their own identity.
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrValidation)
	ErrEmptyCart         = fmt.Errorf("%w: cart is empty", ErrValidation)
)

// NotFound returns an error that matches ErrNotFound.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Validation returns an error that matches ErrValidation.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InsufficientStock names the product that could not be served.
func InsufficientStock(productName string, available, requested int) error {
	return fmt.Errorf("%w for %q (available %d, requested %d)", ErrInsufficientStock, productName, available, requested)
}

// FromGorm converts gorm.ErrRecordNotFound into a NotFound for entity and
// wraps anything else with context.
func FromGorm(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(entity)
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a validation error, including
// insufficient stock and empty cart.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
