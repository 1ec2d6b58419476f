package notification

import "errors"

var (
	// ErrNotificationNotFound indicates the notification doesn't exist.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNoRecipients indicates no partner has a deliverable address.
	ErrNoRecipients = errors.New("no recipients configured")
	// ErrInvalidInput indicates invalid notification input.
	ErrInvalidInput = errors.New("invalid notification input")
)
