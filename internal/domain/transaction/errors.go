package transaction

import (
	"errors"
	"fmt"
)

var (
	// ErrTransactionNotFound indicates the transaction doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidInput indicates invalid transaction input.
	ErrInvalidInput = errors.New("invalid transaction input")
)

// ValidationError reports a rejected input and names the violated field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
