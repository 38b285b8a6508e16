package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrBalance indicates that a journal's debits and credits do not balance.
var ErrBalance = errors.New("journal is not balanced")

// ErrReferential indicates that a referenced resource is missing, deleted or of the wrong kind.
var ErrReferential = errors.New("referential integrity error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrStateConflict indicates that the operation is not allowed in the resource's current state,
// or that a concurrent writer changed the resource first.
var ErrStateConflict = errors.New("state conflict")

// ErrForbidden indicates that the actor lacks the capability required for the operation.
var ErrForbidden = errors.New("authorization denied")

// ErrNotPosted is a state conflict raised when reversing a journal that is not posted.
var ErrNotPosted = fmt.Errorf("%w: journal is not posted", ErrStateConflict)

// ErrAlreadyReversed is a state conflict raised when reversing a journal twice.
var ErrAlreadyReversed = fmt.Errorf("%w: journal is already reversed", ErrStateConflict)

// ErrReasonRequired is a validation error raised when a reason is mandatory but empty.
var ErrReasonRequired = fmt.Errorf("%w: reason is required", ErrValidation)

// AppError carries an HTTP-ish status code next to a message and the wrapped cause.
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an error wrapping ErrNotFound for the given resource.
func NewNotFoundError(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

// NewValidationError creates an error wrapping ErrValidation.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewFieldError creates a validation error naming the offending field.
func NewFieldError(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, msg)
}

// NewLineError creates a validation error pinned to a journal line number.
func NewLineError(lineNumber int, msg string) error {
	return fmt.Errorf("%w: line %d: %s", ErrValidation, lineNumber, msg)
}

// NewReferentialError creates an error wrapping ErrReferential.
func NewReferentialError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReferential, fmt.Sprintf(format, args...))
}

// NewStateConflictError creates an error wrapping ErrStateConflict.
func NewStateConflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, fmt.Sprintf(format, args...))
}

// NewForbiddenError creates an error wrapping ErrForbidden.
func NewForbiddenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// BalanceError reports both totals of an unbalanced journal.
type BalanceError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: total debit %s does not equal total credit %s",
		ErrBalance.Error(), e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2))
}

func (e *BalanceError) Unwrap() error {
	return ErrBalance
}

// NewBalanceError creates a BalanceError.
func NewBalanceError(totalDebit, totalCredit decimal.Decimal) error {
	return &BalanceError{TotalDebit: totalDebit, TotalCredit: totalCredit}
}

// HTTPStatus maps an error onto the status code the API layer reports for it.
func HTTPStatus(err error) int {
	var appErr *AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBalance), errors.Is(err, ErrReferential):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrStateConflict):
		return http.StatusConflict
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}
