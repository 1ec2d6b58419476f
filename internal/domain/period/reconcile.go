package period

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/partner"
)

// zeroTolerance is the rounding slack allowed by the zero-sum check:
// one cent across both partners.
var zeroTolerance = decimal.RequireFromString("0.01")

// partnerCount fixes the equal profit split at two partners.
var partnerCount = decimal.NewFromInt(2)

// CloseComputation is the result of reconciling one period.
type CloseComputation struct {
	Aggregates  Aggregates      `json:"aggregates"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	ProfitShare decimal.Decimal `json:"profit_share"`
	EndBalances Balances        `json:"end_balances"`
}

// ImbalanceError reports that the computed ending balances do not net
// to zero. It signals internally inconsistent transaction data; the
// close is aborted and nothing is persisted. Both partners' balances
// are carried so an operator can diagnose the discrepancy.
type ImbalanceError struct {
	P1End    decimal.Decimal
	P2End    decimal.Decimal
	Residual decimal.Decimal
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("balances do not reconcile: P1 ending %s, P2 ending %s, residual %s",
		e.P1End.StringFixed(2), e.P2End.StringFixed(2), e.Residual.String())
}

// Reconcile converts aggregates and starting balances into ending
// balances, applying the equal profit split and validating the
// zero-sum invariant. Intermediate sums stay unrounded; ending
// balances are rounded to cents for storage.
func Reconcile(agg Aggregates, start Balances) (CloseComputation, error) {
	netProfit := agg.TotalRevenues.Sub(agg.TotalExpenses)
	profitShare := netProfit.Div(partnerCount)

	ending := func(id partner.ID) decimal.Decimal {
		t := agg.Partners[id]
		return start.Get(id).
			Add(t.ExpensesPaid).
			Sub(t.RevenuesReceived).
			Add(t.SettlementsPaid).
			Sub(t.SettlementsReceived).
			Add(profitShare)
	}

	p1End := ending(partner.P1)
	p2End := ending(partner.P2)

	if residual := p1End.Add(p2End); residual.Abs().GreaterThan(zeroTolerance) {
		return CloseComputation{}, &ImbalanceError{
			P1End:    p1End.Round(2),
			P2End:    p2End.Round(2),
			Residual: residual,
		}
	}

	return CloseComputation{
		Aggregates:  agg,
		NetProfit:   netProfit,
		ProfitShare: profitShare,
		EndBalances: Balances{P1: p1End.Round(2), P2: p2End.Round(2)},
	}, nil
}
