package transaction

import (
	"context"

	"github.com/wessam/partnerledger/internal/domain/audit"
)

// Repository provides persistence for transactions. Mutating calls
// enforce the period gate: the owning period must be ACTIVE, checked
// inside the same storage transaction that performs the write.
type Repository interface {
	// Create inserts the transaction, resolving its project from the
	// owning period.
	Create(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error
	// Delete removes the transaction and returns the deleted row.
	Delete(ctx context.Context, id string) (*Transaction, error)
	ListForPeriod(ctx context.Context, periodID string) ([]Transaction, error)
	ListForProject(ctx context.Context, projectID string) ([]Transaction, error)
}

// Auditor receives the domain events emitted by transaction mutations.
type Auditor interface {
	Append(ctx context.Context, event *audit.Event) error
}

// NotificationQueue queues a pending notification for a newly created
// transaction. Dispatching is the surrounding application's concern.
type NotificationQueue interface {
	Enqueue(ctx context.Context, transactionID string) error
}
