package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrRecordNotFound = errors.New("record not found")

// ErrInsufficientStock is matched with errors.Is against InsufficientStockError.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidTransition is matched with errors.Is against InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrResourceExhausted signals that document number issuance ran out of
// retries. Transient; the caller may retry the whole operation.
var ErrResourceExhausted = errors.New("document number issuance attempts exhausted")

// ValidationError reports malformed or missing input. Nothing was persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError carries enough detail for the caller to name the
// product and location that lack stock.
type InsufficientStockError struct {
	LocationId int
	ProductId  int
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d at location %d: requested %s, available %s",
		e.ProductId, e.LocationId, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type InvalidTransitionError struct {
	Subject string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Subject, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StorageError wraps an unavailable persistence layer. The surrounding
// transaction is always rolled back; user-visible behavior is an opaque
// "try again" signal.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
