package period

import (
	"context"
	"time"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/transaction"
)

// CloseFunc computes the outcome of closing a period. It is called by
// the store with the period and its full transaction list loaded
// inside the same storage transaction that will persist the result, so
// the whole close is a single all-or-nothing unit. Returning an error
// rolls everything back.
type CloseFunc func(p *Period, txs []transaction.Transaction) (*CloseResult, error)

// CloseResult carries the fully updated closed period, its
// PENDING_NAME successor, and the reconciliation figures.
type CloseResult struct {
	Closed      *Period          `json:"closed"`
	Successor   *Period          `json:"successor"`
	Computation CloseComputation `json:"computation"`
}

// Repository provides persistence for periods.
type Repository interface {
	Create(ctx context.Context, p *Period) error
	Get(ctx context.Context, id string) (*Period, error)
	ListForProject(ctx context.Context, projectID string) ([]Period, error)
	OpenForProject(ctx context.Context, projectID string) (*Period, error)
	CountForProject(ctx context.Context, projectID string) (int, error)
	// Close runs the close sequence atomically: load period, load its
	// transactions, invoke compute, persist the closed period with a
	// status compare-and-swap, insert the successor.
	Close(ctx context.Context, id string, compute CloseFunc) (*CloseResult, error)
	// Name sets the name and activates a PENDING_NAME period. The
	// update is guarded on the current status.
	Name(ctx context.Context, id, name string, openedAt time.Time) (*Period, error)
	// Reset force-closes any ACTIVE period of the project and inserts
	// fresh as the new opening period, in one unit.
	Reset(ctx context.Context, projectID string, endDate time.Time, fresh *Period) error
}

// Auditor receives the domain events emitted by period transitions.
type Auditor interface {
	Append(ctx context.Context, event *audit.Event) error
}
