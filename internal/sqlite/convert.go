package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/partner"
)

// dateLayout is the storage format for day-precision columns.
const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return d, nil
}

// partnerArg converts an optional partner reference for storage.
func partnerArg(id *partner.ID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func partnerFromNull(s sql.NullString) *partner.ID {
	if !s.Valid {
		return nil
	}
	id := partner.ID(s.String)
	return &id
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timeFromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
