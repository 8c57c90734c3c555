package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique code, SKU or value already exists.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInUse indicates a delete blocked by dependent records.
	ErrInUse = errors.New("record is referenced by other records")
	// ErrInvalidState indicates an operation not allowed from the current status.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrInsufficientStock indicates a deduction larger than the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation indicates invalid or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrConcurrentUpdate indicates the transaction lost a race with another
	// writer and can be resubmitted unchanged.
	ErrConcurrentUpdate = errors.New("concurrent update")
)
