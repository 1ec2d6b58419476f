package period

import (
	"errors"
	"fmt"
)

var (
	// ErrPeriodNotFound indicates the period doesn't exist.
	ErrPeriodNotFound = errors.New("period not found")
	// ErrEmptyName indicates a blank name was supplied for a pending period.
	ErrEmptyName = errors.New("period name must not be empty")
	// ErrAlreadyClosed indicates a concurrent close won the race.
	ErrAlreadyClosed = errors.New("period already closed")
)

// StatusError reports a state-precondition failure: the operation
// required one status and found another. No state is changed.
type StatusError struct {
	PeriodID string
	Expected Status
	Actual   Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("period %s must be %s, got %s", e.PeriodID, e.Expected, e.Actual)
}
