package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rmoreira/politicos/internal/model"
)

// LegislatorSummary is the listing shape: a legislator with its party code
type LegislatorSummary struct {
	ID       string
	Name     string
	Source   string
	Region   sql.NullString
	Party    sql.NullString
	PhotoURL sql.NullString
}

// LegislatorDetail adds expense totals to the full legislator record
type LegislatorDetail struct {
	model.Legislator
	Party        sql.NullString
	ExpenseCount int64
	TotalCents   int64
}

// LegislatorFilters narrows List results; zero values mean "no filter"
type LegislatorFilters struct {
	Name   string
	Source string
	Region string
	Party  string
	Limit  int
	Offset int
}

// LegislatorStore handles database operations for legislators
type LegislatorStore struct {
	db *sql.DB
}

// NewLegislatorStore creates a new LegislatorStore
func NewLegislatorStore(db *sql.DB) *LegislatorStore {
	return &LegislatorStore{db: db}
}

// List retrieves legislators matching the filters plus the unfiltered match count
func (s *LegislatorStore) List(ctx context.Context, f LegislatorFilters) ([]LegislatorSummary, int, error) {
	var conds []string
	var params []interface{}

	add := func(cond string, val interface{}) {
		params = append(params, val)
		conds = append(conds, fmt.Sprintf(cond, len(params)))
	}

	if f.Name != "" {
		add("l.name ILIKE $%d", "%"+f.Name+"%")
	}
	if f.Source != "" {
		add("l.source = $%d", f.Source)
	}
	if f.Region != "" {
		add("l.region = $%d", f.Region)
	}
	if f.Party != "" {
		add("p.code = $%d", f.Party)
	}

	whereSQL := ""
	if len(conds) > 0 {
		whereSQL = " WHERE " + strings.Join(conds, " AND ")
	}

	countQuery := `
		SELECT COUNT(*)
		FROM legislators l
		LEFT JOIN parties p ON p.id = l.party_id
	` + whereSQL

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count legislators: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT l.id, l.name, l.source, l.region, p.code, l.photo_url
		FROM legislators l
		LEFT JOIN parties p ON p.id = l.party_id
		%s
		ORDER BY l.name
		LIMIT $%d OFFSET $%d
	`, whereSQL, len(params)+1, len(params)+2)
	params = append(params, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list legislators: %w", err)
	}
	defer rows.Close()

	var legislators []LegislatorSummary
	for rows.Next() {
		var l LegislatorSummary
		if err := rows.Scan(&l.ID, &l.Name, &l.Source, &l.Region, &l.Party, &l.PhotoURL); err != nil {
			return nil, 0, fmt.Errorf("failed to scan legislator: %w", err)
		}
		legislators = append(legislators, l)
	}

	return legislators, total, rows.Err()
}

// GetByID retrieves one legislator with its party code and expense totals
func (s *LegislatorStore) GetByID(ctx context.Context, id string) (*LegislatorDetail, error) {
	query := `
		SELECT l.id, l.source, l.external_id, l.name, l.civil_name, l.tax_id,
		       l.region, l.party_id, l.sex, l.birth_date, l.photo_url, l.email,
		       l.created_at, l.updated_at, p.code,
		       COUNT(d.id), COALESCE(SUM(d.amount_cents), 0)
		FROM legislators l
		LEFT JOIN parties p ON p.id = l.party_id
		LEFT JOIN expenses d ON d.legislator_id = l.id
		WHERE l.id = $1
		GROUP BY l.id, p.code
	`

	var d LegislatorDetail
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.Source,
		&d.ExternalID,
		&d.Name,
		&d.CivilName,
		&d.TaxID,
		&d.Region,
		&d.PartyID,
		&d.Sex,
		&d.BirthDate,
		&d.PhotoURL,
		&d.Email,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.Party,
		&d.ExpenseCount,
		&d.TotalCents,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get legislator %s: %w", id, err)
	}

	return &d, nil
}

// Count returns the total number of legislators
func (s *LegislatorStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM legislators").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count legislators: %w", err)
	}
	return count, nil
}
