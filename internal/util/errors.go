// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrForbidden           = errors.New("forbidden: insufficient rights")
	ErrInsufficientBalance = errors.New("insufficient credit balance")
	ErrConflict            = errors.New("concurrent modification conflict")
	ErrCreditNotFound      = errors.New("credit account not found for this user")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// IsError reports whether err matches the target sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
