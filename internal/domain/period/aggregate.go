package period

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/transaction"
)

// PartnerTotals accumulates one partner's side of a period.
type PartnerTotals struct {
	ExpensesPaid        decimal.Decimal `json:"expenses_paid"`
	RevenuesReceived    decimal.Decimal `json:"revenues_received"`
	SettlementsPaid     decimal.Decimal `json:"settlements_paid"`
	SettlementsReceived decimal.Decimal `json:"settlements_received"`
}

// Aggregates holds the per-partner totals and the period-wide totals
// produced by walking a period's transactions. The result is
// independent of transaction order.
type Aggregates struct {
	Partners      map[partner.ID]*PartnerTotals `json:"partners"`
	TotalExpenses decimal.Decimal               `json:"total_expenses"`
	TotalRevenues decimal.Decimal               `json:"total_revenues"`
}

// IntegrityError marks a transaction the ledger cannot account for.
// It aborts a close; it is never skipped silently.
type IntegrityError struct {
	TransactionID string
	Reason        string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("transaction %s: %s", e.TransactionID, e.Reason)
}

func newPartnerTotals() *PartnerTotals {
	return &PartnerTotals{
		ExpensesPaid:        decimal.Zero,
		RevenuesReceived:    decimal.Zero,
		SettlementsPaid:     decimal.Zero,
		SettlementsReceived: decimal.Zero,
	}
}

// Aggregate walks the full transaction list of one period and produces
// per-partner and period-wide sums.
func Aggregate(txs []transaction.Transaction) (Aggregates, error) {
	agg := Aggregates{
		Partners:      make(map[partner.ID]*PartnerTotals, 2),
		TotalExpenses: decimal.Zero,
		TotalRevenues: decimal.Zero,
	}
	for _, id := range partner.All() {
		agg.Partners[id] = newPartnerTotals()
	}

	for _, tx := range txs {
		if !tx.Amount.IsPositive() {
			return Aggregates{}, &IntegrityError{TransactionID: tx.ID, Reason: "amount is not positive"}
		}

		switch tx.Type {
		case transaction.TypeExpense:
			actor, err := agg.actorOf(&tx, tx.PaidBy, "paid_by")
			if err != nil {
				return Aggregates{}, err
			}
			agg.TotalExpenses = agg.TotalExpenses.Add(tx.Amount)
			actor.ExpensesPaid = actor.ExpensesPaid.Add(tx.Amount)

		case transaction.TypeRevenue:
			actor, err := agg.actorOf(&tx, tx.PaidBy, "paid_by")
			if err != nil {
				return Aggregates{}, err
			}
			agg.TotalRevenues = agg.TotalRevenues.Add(tx.Amount)
			actor.RevenuesReceived = actor.RevenuesReceived.Add(tx.Amount)

		case transaction.TypeSettlement:
			from, err := agg.actorOf(&tx, tx.FromPartner, "from_partner")
			if err != nil {
				return Aggregates{}, err
			}
			to, err := agg.actorOf(&tx, tx.ToPartner, "to_partner")
			if err != nil {
				return Aggregates{}, err
			}
			if *tx.FromPartner == *tx.ToPartner {
				// A self-settlement credits and debits the same partner
				// and could never be caught by the zero-sum check, so it
				// is rejected here instead.
				return Aggregates{}, &IntegrityError{
					TransactionID: tx.ID,
					Reason:        fmt.Sprintf("settlement from %s to itself", *tx.FromPartner),
				}
			}
			from.SettlementsPaid = from.SettlementsPaid.Add(tx.Amount)
			to.SettlementsReceived = to.SettlementsReceived.Add(tx.Amount)

		default:
			return Aggregates{}, &IntegrityError{
				TransactionID: tx.ID,
				Reason:        fmt.Sprintf("unknown transaction type %q", tx.Type),
			}
		}
	}

	return agg, nil
}

func (a Aggregates) actorOf(tx *transaction.Transaction, id *partner.ID, field string) (*PartnerTotals, error) {
	if id == nil {
		return nil, &IntegrityError{TransactionID: tx.ID, Reason: fmt.Sprintf("missing %s", field)}
	}
	if !partner.Valid(*id) {
		return nil, &IntegrityError{TransactionID: tx.ID, Reason: fmt.Sprintf("%s names unknown partner %q", field, *id)}
	}
	return a.Partners[*id], nil
}
