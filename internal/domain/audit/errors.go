package audit

import "errors"

var (
	// ErrInvalidInput indicates an invalid audit entry.
	ErrInvalidInput = errors.New("invalid audit entry")
)
