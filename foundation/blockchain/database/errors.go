package database

import (
	"errors"
	"fmt"
)

// Set of error variables for signing and validating transactions.
var (
	ErrAuthorization    = errors.New("cannot sign transactions for other accounts")
	ErrMissingSignature = errors.New("no signature in this transaction")
	ErrInvalidSignature = errors.New("transaction signature is invalid")
	ErrMissingAddress   = errors.New("transaction must include from and to address")
	ErrAmountTooLarge   = errors.New("transaction amount exceeds the largest balance")
)

// ErrMiningTimeout is returned when the proof of work runs out of attempts
// before finding a solution.
var ErrMiningTimeout = errors.New("mining attempts exhausted")

// =============================================================================

// ValidationError represents a transaction rejected before it could reach
// the mempool.
type ValidationError struct {
	Tx  Tx
	Err error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("transaction invalid, %s", ve.Err)
}

// Unwrap provides access to the reason the transaction was rejected.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
