package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/repository"
)

// PartnerRepository implements repository.PartnerRepository for SQLite.
// The two partner rows are seeded by the migrations and never created
// or deleted at runtime.
type PartnerRepository struct {
	db *DB
}

// NewPartnerRepository creates a new PartnerRepository
func NewPartnerRepository(db *DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

const partnerColumns = `id, display_name, phone, email, created_at, updated_at`

func scanPartner(scan func(dest ...any) error) (*partner.Profile, error) {
	var p partner.Profile
	err := scan(
		&p.ID,
		&p.DisplayName,
		&p.Phone,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves one partner profile
func (r *PartnerRepository) Get(ctx context.Context, id partner.ID) (*partner.Profile, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, string(id))
	p, err := scanPartner(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return p, nil
}

// List returns both partner profiles in stable order
func (r *PartnerRepository) List(ctx context.Context) ([]partner.Profile, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []partner.Profile
	for rows.Next() {
		p, err := scanPartner(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner rows: %w", err)
	}

	return partners, nil
}

// Update rewrites a partner's contact details
func (r *PartnerRepository) Update(ctx context.Context, p *partner.Profile) error {
	query := `
		UPDATE partners
		SET display_name = ?, phone = ?, email = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		p.DisplayName,
		p.Phone,
		p.Email,
		p.UpdatedAt,
		string(p.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
