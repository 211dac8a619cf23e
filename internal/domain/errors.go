package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse indicates the entity is still referenced by other records.
	ErrInUse = errors.New("in use")
	// ErrEmptyCart is returned when an order is placed from an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when a requested quantity exceeds stock.
type InsufficientStockError struct {
	ProductID int64
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Only %d units of this product are available", e.Available)
}

// ConflictError carries a client-facing message for a conflict and wraps
// ErrAlreadyExists or ErrInUse.
type ConflictError struct {
	Msg string
	Err error
}

func (e *ConflictError) Error() string {
	return e.Msg
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NotFoundError carries a client-facing message and wraps ErrNotFound.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(msg string) error {
	return &NotFoundError{Msg: msg}
}
