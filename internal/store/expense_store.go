package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ExpenseRow is the listing shape for a legislator's expenses
type ExpenseRow struct {
	ID               string
	LegislatorID     string
	Year             int
	Month            int
	Date             sql.NullString
	Category         string
	AmountCents      int64
	SupplierName     sql.NullString
	SupplierDocument sql.NullString
}

// ExpenseFilters narrows ListByLegislator results
type ExpenseFilters struct {
	Year     int
	Month    int
	Category string
	Limit    int
	Offset   int
}

// CategorySpending aggregates spending for one expense category
type CategorySpending struct {
	Category   string
	TotalCents int64
	Count      int64
}

// MonthlySpending aggregates spending for one month
type MonthlySpending struct {
	Year       int
	Month      int
	TotalCents int64
	Count      int64
}

// RankingEntry is one row of the spending ranking
type RankingEntry struct {
	LegislatorID string
	Name         string
	Source       string
	Region       sql.NullString
	Party        sql.NullString
	PhotoURL     sql.NullString
	TotalCents   int64
	ExpenseCount int64
}

// RankingFilters narrows Ranking results
type RankingFilters struct {
	Source    string
	Region    string
	Limit     int
	Ascending bool
}

// Overview holds the system-wide totals
type Overview struct {
	Legislators int64
	Expenses    int64
	Parties     int64
	TotalCents  int64
}

// ExpenseStore handles database operations for expenses
type ExpenseStore struct {
	db *sql.DB
}

// NewExpenseStore creates a new ExpenseStore
func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

// ListByLegislator retrieves a legislator's expenses plus the match count
func (s *ExpenseStore) ListByLegislator(ctx context.Context, legislatorID string, f ExpenseFilters) ([]ExpenseRow, int, error) {
	conds := []string{"d.legislator_id = $1"}
	params := []interface{}{legislatorID}

	if f.Year > 0 {
		params = append(params, f.Year)
		conds = append(conds, fmt.Sprintf("d.year = $%d", len(params)))
	}
	if f.Month > 0 {
		params = append(params, f.Month)
		conds = append(conds, fmt.Sprintf("d.month = $%d", len(params)))
	}
	if f.Category != "" {
		params = append(params, f.Category)
		conds = append(conds, fmt.Sprintf("d.category = $%d", len(params)))
	}

	whereSQL := " WHERE " + strings.Join(conds, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM expenses d" + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT d.id, d.legislator_id, d.year, d.month, d.date, d.category,
		       d.amount_cents, d.supplier_name, d.supplier_document
		FROM expenses d
		%s
		ORDER BY d.date DESC, d.id DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, len(params)+1, len(params)+2)
	params = append(params, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []ExpenseRow
	for rows.Next() {
		var e ExpenseRow
		err := rows.Scan(
			&e.ID,
			&e.LegislatorID,
			&e.Year,
			&e.Month,
			&e.Date,
			&e.Category,
			&e.AmountCents,
			&e.SupplierName,
			&e.SupplierDocument,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, total, rows.Err()
}

// SpendingByCategory aggregates a year's spending per category, largest first
func (s *ExpenseStore) SpendingByCategory(ctx context.Context, year int, source string) ([]CategorySpending, error) {
	query := `
		SELECT d.category, SUM(d.amount_cents), COUNT(*)
		FROM expenses d
		WHERE d.year = $1
	`
	params := []interface{}{year}

	if source != "" {
		params = append(params, source)
		query += fmt.Sprintf(" AND d.source = $%d", len(params))
	}

	query += " GROUP BY d.category ORDER BY SUM(d.amount_cents) DESC"

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to get spending by category: %w", err)
	}
	defer rows.Close()

	var results []CategorySpending
	for rows.Next() {
		var c CategorySpending
		if err := rows.Scan(&c.Category, &c.TotalCents, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category spending: %w", err)
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

// MonthlySpending aggregates a year's spending per month. An empty
// legislatorID aggregates across all legislators.
func (s *ExpenseStore) MonthlySpending(ctx context.Context, year int, legislatorID string) ([]MonthlySpending, error) {
	query := `
		SELECT d.year, d.month, SUM(d.amount_cents), COUNT(*)
		FROM expenses d
		WHERE d.year = $1
	`
	params := []interface{}{year}

	if legislatorID != "" {
		params = append(params, legislatorID)
		query += fmt.Sprintf(" AND d.legislator_id = $%d", len(params))
	}

	query += " GROUP BY d.year, d.month ORDER BY d.month"

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly spending: %w", err)
	}
	defer rows.Close()

	var results []MonthlySpending
	for rows.Next() {
		var m MonthlySpending
		if err := rows.Scan(&m.Year, &m.Month, &m.TotalCents, &m.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly spending: %w", err)
		}
		results = append(results, m)
	}

	return results, rows.Err()
}

// Ranking returns legislators ordered by their total spending in a year
func (s *ExpenseStore) Ranking(ctx context.Context, year int, f RankingFilters) ([]RankingEntry, error) {
	query := `
		SELECT l.id, l.name, l.source, l.region, p.code, l.photo_url,
		       SUM(d.amount_cents), COUNT(*)
		FROM legislators l
		JOIN expenses d ON d.legislator_id = l.id
		LEFT JOIN parties p ON p.id = l.party_id
		WHERE d.year = $1
	`
	params := []interface{}{year}

	if f.Source != "" {
		params = append(params, f.Source)
		query += fmt.Sprintf(" AND l.source = $%d", len(params))
	}
	if f.Region != "" {
		params = append(params, f.Region)
		query += fmt.Sprintf(" AND l.region = $%d", len(params))
	}

	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	params = append(params, limit)
	query += fmt.Sprintf(`
		GROUP BY l.id, p.code
		ORDER BY SUM(d.amount_cents) %s
		LIMIT $%d
	`, order, len(params))

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}
	defer rows.Close()

	var entries []RankingEntry
	for rows.Next() {
		var r RankingEntry
		err := rows.Scan(
			&r.LegislatorID,
			&r.Name,
			&r.Source,
			&r.Region,
			&r.Party,
			&r.PhotoURL,
			&r.TotalCents,
			&r.ExpenseCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		entries = append(entries, r)
	}

	return entries, rows.Err()
}

// GetOverview returns the system-wide totals
func (s *ExpenseStore) GetOverview(ctx context.Context) (*Overview, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM legislators),
			(SELECT COUNT(*) FROM expenses),
			(SELECT COUNT(*) FROM parties),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM expenses)
	`

	var o Overview
	err := s.db.QueryRowContext(ctx, query).Scan(&o.Legislators, &o.Expenses, &o.Parties, &o.TotalCents)
	if err != nil {
		return nil, fmt.Errorf("failed to get overview: %w", err)
	}

	return &o, nil
}
