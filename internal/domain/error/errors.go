package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors (never retried, never counted against provider health)
	CodeInvalidAmount        = 4001
	CodeInvalidCurrency      = 4002
	CodeInvalidRequest       = 4003
	CodePaymentNotCompleted  = 4004
	CodeUnsupportedOperation = 4005
	CodePaymentNotFound      = 4040
	CodeRateLimited          = 4290

	// 5xxx - Server / transient errors (callers may retry the whole operation)
	CodeInternalServer      = 5000
	CodeProviderFailure     = 5020
	CodeNoProviderAvailable = 5030
	CodeLockAcquisition     = 5031
)

// Base error types
var (
	// ErrInvalidAmount is returned when the payment amount is not a positive fixed-point value
	ErrInvalidAmount = errors.New("amount must be a positive value")

	// ErrInvalidCurrency is returned when the currency has no routing configuration
	ErrInvalidCurrency = errors.New("currency is not supported")

	// ErrInvalidUserID is returned when the user ID is empty
	ErrInvalidUserID = errors.New("user ID cannot be empty")

	// ErrInvalidPaymentMethod is returned when the payment method is not recognised
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPaymentNotFound is returned when the requested payment transaction doesn't exist
	ErrPaymentNotFound = errors.New("payment transaction not found")

	// ErrPaymentNotCompleted is returned when settlement is attempted on a non-completed payment
	ErrPaymentNotCompleted = errors.New("payment transaction is not completed")

	// ErrInvalidStatusTransition is returned when a terminal payment status would be mutated
	ErrInvalidStatusTransition = errors.New("invalid payment status transition")

	// ErrProviderReferenceSet is returned when the provider reference would be overwritten
	ErrProviderReferenceSet = errors.New("provider reference already set")

	// ErrNoProviderAvailable is returned when every routing candidate is unhealthy or unconfigured
	ErrNoProviderAvailable = errors.New("no payment provider available")

	// ErrProviderFailure is returned when a provider adapter call fails
	ErrProviderFailure = errors.New("provider call failed")

	// ErrUnsupportedOperation is returned when the selected provider lacks a capability
	ErrUnsupportedOperation = errors.New("operation not supported by provider")

	// ErrLockAcquisitionFailed is returned when lock retries are exhausted
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")

	// ErrRateLimited is returned when the sliding-window limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidCurrency):
		return CodeInvalidCurrency
	case errors.Is(err, ErrInvalidUserID),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidStatusTransition),
		errors.Is(err, ErrProviderReferenceSet):
		return CodeInvalidRequest
	case errors.Is(err, ErrPaymentNotCompleted):
		return CodePaymentNotCompleted
	case errors.Is(err, ErrUnsupportedOperation):
		return CodeUnsupportedOperation
	case errors.Is(err, ErrPaymentNotFound):
		return CodePaymentNotFound
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrProviderFailure):
		return CodeProviderFailure
	case errors.Is(err, ErrNoProviderAvailable):
		return CodeNoProviderAvailable
	case errors.Is(err, ErrLockAcquisitionFailed):
		return CodeLockAcquisition
	default:
		return CodeInternalServer
	}
}

// ProviderError carries the provider and reason for a failed adapter call
type ProviderError struct {
	Provider  string
	Operation string
	Reason    string
	Err       error
}

// Error implements the error interface for ProviderError
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed during %s: %s", e.Provider, e.Operation, e.Reason)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is checks if the target error is an ErrProviderFailure
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}

// LogFields returns a map of fields for structured logging
func (e *ProviderError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "provider_error",
		"provider":   e.Provider,
		"operation":  e.Operation,
		"reason":     e.Reason,
		"error_code": CodeProviderFailure,
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewProviderError creates a detailed provider error
func NewProviderError(provider, operation, reason string, err error) error {
	return &ProviderError{
		Provider:  provider,
		Operation: operation,
		Reason:    reason,
		Err:       err,
	}
}

// NoProviderAvailableError reports that routing found no healthy configured candidate
type NoProviderAvailableError struct {
	Currency string
	Method   string
}

// Error implements the error interface
func (e *NoProviderAvailableError) Error() string {
	return fmt.Sprintf("no payment provider available for currency %s and method %s", e.Currency, e.Method)
}

// Is checks if the target error is an ErrNoProviderAvailable
func (e *NoProviderAvailableError) Is(target error) bool {
	return target == ErrNoProviderAvailable
}

// LogFields returns a map of fields for structured logging
func (e *NoProviderAvailableError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "no_provider_available",
		"currency":   e.Currency,
		"method":     e.Method,
		"error_code": CodeNoProviderAvailable,
	}
}

// LockAcquisitionError names the contended key and how many attempts were made
type LockAcquisitionError struct {
	Key      string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *LockAcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire lock %q after %d attempts", e.Key, e.Attempts)
}

// Unwrap returns the underlying error
func (e *LockAcquisitionError) Unwrap() error {
	return e.Err
}

// Is checks if the target error is an ErrLockAcquisitionFailed
func (e *LockAcquisitionError) Is(target error) bool {
	return target == ErrLockAcquisitionFailed
}

// LogFields returns a map of fields for structured logging
func (e *LockAcquisitionError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "lock_acquisition_failed",
		"lock_key":   e.Key,
		"attempts":   e.Attempts,
		"error_code": CodeLockAcquisition,
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// UnsupportedOperationError reports a capability the selected provider does not offer
type UnsupportedOperationError struct {
	Provider  string
	Operation string
}

// Error implements the error interface
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("provider %s does not support %s", e.Provider, e.Operation)
}

// Is checks if the target error is an ErrUnsupportedOperation
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// LogFields returns a map of fields for structured logging
func (e *UnsupportedOperationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "unsupported_operation",
		"provider":   e.Provider,
		"operation":  e.Operation,
		"error_code": CodeUnsupportedOperation,
	}
}

// IsValidationError checks if the error is client-input related.
// Validation errors are never retried and never counted against provider health.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidCurrency) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrProviderReferenceSet)
}

// IsRetryable checks if the error maps to a "temporarily unavailable" response
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNoProviderAvailable) ||
		errors.Is(err, ErrLockAcquisitionFailed) ||
		errors.Is(err, ErrProviderFailure) ||
		errors.Is(err, ErrRateLimited)
}

// IsNotFoundError checks if the error is a "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPaymentNotFound)
}
