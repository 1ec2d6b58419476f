package period

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/partner"
)

// Status represents the lifecycle status of a period
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusClosed      Status = "CLOSED"
	StatusPendingName Status = "PENDING_NAME"
)

// Balances holds one signed amount per partner. Positive means the
// shared pool owes the partner; negative means the partner owes the pool.
type Balances struct {
	P1 decimal.Decimal `json:"p1"`
	P2 decimal.Decimal `json:"p2"`
}

// ZeroBalances returns a balance pair with both partners at zero.
func ZeroBalances() Balances {
	return Balances{P1: decimal.Zero, P2: decimal.Zero}
}

// Get returns the balance for one partner.
func (b Balances) Get(id partner.ID) decimal.Decimal {
	if id == partner.P1 {
		return b.P1
	}
	return b.P2
}

// Sum returns the net of both partners' balances.
func (b Balances) Sum() decimal.Decimal {
	return b.P1.Add(b.P2)
}

// Period represents one accounting interval for a project
type Period struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        Status     `json:"status"`
	StartBalances Balances   `json:"start_balances"`
	EndBalances   *Balances  `json:"end_balances,omitempty"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Open reports whether the period is the project's current open slot.
// At most one period per project may be open at a time.
func (p *Period) Open() bool {
	return p.Status == StatusActive || p.Status == StatusPendingName
}
