package domain

import "fmt"

// ValidationError rejects malformed input. Details carries optional
// per-field messages for the caller.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// NotFoundError covers missing orders and missing, soft-deleted or
// unavailable foods; a buyer cannot tell those apart.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// StockError names the food that cannot be fulfilled and how much is left,
// so the caller can resubmit with a reduced quantity. It is a 400-class
// failure, not a 404.
type StockError struct {
	FoodName  string
	Remaining int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d remaining", e.FoodName, e.Remaining)
}
