package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/partner"
)

// Type classifies a financial event
type Type string

const (
	TypeExpense    Type = "EXPENSE"
	TypeRevenue    Type = "REVENUE"
	TypeSettlement Type = "SETTLEMENT"
)

// Transaction represents one financial event belonging to exactly one
// period and one project. It is mutable only while the owning period
// is ACTIVE.
type Transaction struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	PeriodID    string          `json:"period_id"`
	Type        Type            `json:"type"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      *partner.ID     `json:"paid_by,omitempty"`
	FromPartner *partner.ID     `json:"from_partner,omitempty"`
	ToPartner   *partner.ID     `json:"to_partner,omitempty"`
	CreatedBy   *string         `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
