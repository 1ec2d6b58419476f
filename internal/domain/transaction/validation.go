package transaction

import (
	"strings"

	"github.com/wessam/partnerledger/internal/domain/partner"
)

// Validate checks the shape of a transaction: a positive amount, a
// description, and the actor fields required by its type.
func Validate(tx *Transaction) error {
	if strings.TrimSpace(tx.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if !tx.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if tx.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}

	switch tx.Type {
	case TypeExpense, TypeRevenue:
		if tx.PaidBy == nil {
			return &ValidationError{Field: "paid_by", Reason: "is required"}
		}
		if !partner.Valid(*tx.PaidBy) {
			return &ValidationError{Field: "paid_by", Reason: "names an unknown partner"}
		}
	case TypeSettlement:
		if tx.FromPartner == nil {
			return &ValidationError{Field: "from_partner", Reason: "is required"}
		}
		if tx.ToPartner == nil {
			return &ValidationError{Field: "to_partner", Reason: "is required"}
		}
		if !partner.Valid(*tx.FromPartner) {
			return &ValidationError{Field: "from_partner", Reason: "names an unknown partner"}
		}
		if !partner.Valid(*tx.ToPartner) {
			return &ValidationError{Field: "to_partner", Reason: "names an unknown partner"}
		}
		if *tx.FromPartner == *tx.ToPartner {
			return &ValidationError{Field: "to_partner", Reason: "must differ from from_partner"}
		}
	default:
		return &ValidationError{Field: "type", Reason: "is not a known transaction type"}
	}

	return nil
}
