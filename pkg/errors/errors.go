package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates insufficient permissions
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Entitlement-specific errors

var (
	// ErrUnknownTier indicates a tier outside the defined schedule.
	// Never mapped to a default profile: a bad tier here means a billing bug upstream.
	ErrUnknownTier = errors.New("unknown subscription tier")

	// ErrLimitExceeded indicates a tier limit would be violated
	ErrLimitExceeded = errors.New("tier limit exceeded")

	// ErrFeatureDisabled indicates the feature is not enabled for the tier
	ErrFeatureDisabled = errors.New("feature not enabled for tier")
)

// Deck-specific errors

var (
	// ErrDeckNotFound indicates the deck does not exist
	ErrDeckNotFound = errors.New("deck not found")

	// ErrStockNotFound indicates the symbol is not in the deck
	ErrStockNotFound = errors.New("stock not found in deck")

	// ErrDuplicateSymbol indicates the deck already holds the symbol
	ErrDuplicateSymbol = errors.New("symbol already in deck")

	// ErrDuplicateStrategy indicates the strategy is already applied to the stock
	ErrDuplicateStrategy = errors.New("strategy already applied")

	// ErrDeckLocked indicates another mutation currently holds the deck lock
	ErrDeckLocked = errors.New("deck is locked by another operation")
)

// Quote gateway errors

var (
	// ErrQuoteUnavailable indicates the quote provider could not serve the symbol
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrQuoteStale indicates a refresh failed and the stored snapshot was kept.
	// Soft signal: callers render stale data, they do not fail.
	ErrQuoteStale = errors.New("performance data stale")
)

// LimitExceededError reports which tier limit blocked a mutation, with enough
// detail to render a specific user message.
type LimitExceededError struct {
	Resource string // "decks", "stocks", "strategies"
	Tier     string
	Current  int
	Max      int
}

// Error implements the error interface
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded: %d/%d on %s tier (upgrade your plan for more)",
		e.Resource, e.Current, e.Max, e.Tier)
}

// Unwrap makes the error match ErrLimitExceeded via errors.Is
func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}

// NewLimitExceeded creates a new limit exceeded error
func NewLimitExceeded(resource, tier string, current, max int) *LimitExceededError {
	return &LimitExceededError{
		Resource: resource,
		Tier:     tier,
		Current:  current,
		Max:      max,
	}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap makes the error match ErrInvalidInput via errors.Is
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
