package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmoreira/politicos/internal/model"
)

// PartyStore handles database operations for parties
type PartyStore struct {
	db *sql.DB
}

// NewPartyStore creates a new PartyStore
func NewPartyStore(db *sql.DB) *PartyStore {
	return &PartyStore{db: db}
}

// GetAll retrieves all parties ordered by code
func (s *PartyStore) GetAll(ctx context.Context) ([]model.Party, error) {
	query := `
		SELECT id, code, name, created_at, updated_at
		FROM parties
		ORDER BY code
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get parties: %w", err)
	}
	defer rows.Close()

	var parties []model.Party
	for rows.Next() {
		var p model.Party
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, p)
	}

	return parties, rows.Err()
}

// GetByCode retrieves a party by its acronym
func (s *PartyStore) GetByCode(ctx context.Context, code string) (*model.Party, error) {
	query := `
		SELECT id, code, name, created_at, updated_at
		FROM parties
		WHERE code = $1
	`

	var p model.Party
	err := s.db.QueryRowContext(ctx, query, code).Scan(&p.ID, &p.Code, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get party %s: %w", code, err)
	}

	return &p, nil
}

// Upsert inserts or refreshes a party by code, keeping an existing name
// when no new one is given, and returns the party id
func (s *PartyStore) Upsert(ctx context.Context, code, name string) (int64, error) {
	query := `
		INSERT INTO parties (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, parties.name),
			updated_at = now()
		RETURNING id
	`

	var nameVal sql.NullString
	if name != "" {
		nameVal = sql.NullString{String: name, Valid: true}
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, code, nameVal).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert party %s: %w", code, err)
	}

	return id, nil
}

// Count returns the total number of parties
func (s *PartyStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parties").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count parties: %w", err)
	}
	return count, nil
}
