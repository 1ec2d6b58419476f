package audit

import "context"

// Repository provides persistence for the audit trail.
type Repository interface {
	Append(ctx context.Context, event *Event) error
	List(ctx context.Context, opts ListOptions) ([]Event, error)
}

// ListOptions provides filtering for audit listings.
type ListOptions struct {
	ProjectID     string
	PeriodID      *string
	TransactionID *string
	Type          *EventType
	Limit         int
	Offset        int
}
