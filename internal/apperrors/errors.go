package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates a uniqueness or exclusivity violation, such as a
// duplicate active rate for a currency pair or a double window open.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates the operator is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState indicates the operation is not valid for the current state
// of the teller window or its opening.
var ErrInvalidState = errors.New("invalid state for operation")

// ErrInsufficientFunds indicates a float debit would drive the balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-ish code and message.
// Repositories use it to surface storage failures without leaking driver details.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a generic AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError creates an AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewConflictError creates an AppError that matches ErrConflict.
func NewConflictError(message string) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrConflict}
}

// InsufficientFundsError carries the amounts involved in a failed availability
// check so callers can render a precise message.
type InsufficientFundsError struct {
	CurrencyCode string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s %s, available %s %s",
		e.Required.StringFixed(2), e.CurrencyCode, e.Available.StringFixed(2), e.CurrencyCode)
}

// Is lets errors.Is(err, ErrInsufficientFunds) match this error.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// NewInsufficientFundsError creates an InsufficientFundsError for the given currency.
func NewInsufficientFundsError(currencyCode string, required, available decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{CurrencyCode: currencyCode, Required: required, Available: available}
}
