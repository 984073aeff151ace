package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmoreira/politicos/internal/model"
)

// BatchTx is the set of upserts available inside one batch transaction
type BatchTx interface {
	UpsertParty(ctx context.Context, code string) (int64, error)
	UpsertLegislator(ctx context.Context, l *model.Legislator) error
	UpsertExpense(ctx context.Context, e *model.Expense) error
}

// Ingest is the write-path contract consumed by the collectors
type Ingest interface {
	WithBatch(ctx context.Context, fn func(b BatchTx) error) error
	OpenSyncLog(ctx context.Context, source string, year int) error
	CloseSyncLog(ctx context.Context, source string, year int, status string, processed, upserted, updated int, errMsg string) error
}

// IngestStore handles the write path used by the collectors: batched
// transactional upserts plus the sync-log lifecycle.
type IngestStore struct {
	db *sql.DB
}

// NewIngestStore creates a new IngestStore
func NewIngestStore(db *sql.DB) *IngestStore {
	return &IngestStore{db: db}
}

// Batch exposes the upsert operations available inside one transaction.
// Each batch is its own unit of atomicity; no transaction spans a whole run.
type Batch struct {
	tx *sql.Tx
}

// WithBatch runs fn inside a single transaction, committing on success and
// rolling back if fn returns an error
func (s *IngestStore) WithBatch(ctx context.Context, fn func(b BatchTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Batch{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertParty inserts the party if missing and returns its id.
// An existing party only gets its updated_at bumped; the name is kept.
func (b *Batch) UpsertParty(ctx context.Context, code string) (int64, error) {
	query := `
		INSERT INTO parties (code)
		VALUES ($1)
		ON CONFLICT (code) DO UPDATE SET
			updated_at = now()
		RETURNING id
	`

	var id int64
	if err := b.tx.QueryRowContext(ctx, query, code).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert party %s: %w", code, err)
	}

	return id, nil
}

// UpsertLegislator inserts or refreshes a legislator by its namespaced id.
// Only the mutable fields (name, region, party, photo) are overwritten.
func (b *Batch) UpsertLegislator(ctx context.Context, l *model.Legislator) error {
	query := `
		INSERT INTO legislators (id, source, external_id, name, civil_name,
		                         tax_id, region, party_id, sex, birth_date,
		                         photo_url, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			region = EXCLUDED.region,
			party_id = EXCLUDED.party_id,
			photo_url = EXCLUDED.photo_url,
			updated_at = now()
	`

	_, err := b.tx.ExecContext(ctx, query,
		l.ID,
		l.Source,
		l.ExternalID,
		l.Name,
		l.CivilName,
		l.TaxID,
		l.Region,
		l.PartyID,
		l.Sex,
		l.BirthDate,
		l.PhotoURL,
		l.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert legislator %s: %w", l.ID, err)
	}

	return nil
}

// UpsertExpense inserts or refreshes an expense document. The conflict
// target is the natural key (source, external_id): a second ingestion of
// the same document updates in place and only touches the mutable fields.
func (b *Batch) UpsertExpense(ctx context.Context, e *model.Expense) error {
	query := `
		INSERT INTO expenses (id, legislator_id, external_id, year, month, date,
		                      category, amount_cents, supplier_name,
		                      supplier_document, document_number, document_type,
		                      detail, document_url, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (source, external_id) DO UPDATE SET
			amount_cents = EXCLUDED.amount_cents,
			supplier_name = EXCLUDED.supplier_name,
			detail = EXCLUDED.detail,
			updated_at = now()
	`

	_, err := b.tx.ExecContext(ctx, query,
		e.ID,
		e.LegislatorID,
		e.ExternalID,
		e.Year,
		e.Month,
		e.Date,
		e.Category,
		e.AmountCents,
		e.SupplierName,
		e.SupplierDocument,
		e.DocumentNumber,
		e.DocumentType,
		e.Detail,
		e.DocumentURL,
		e.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert expense %s: %w", e.ID, err)
	}

	return nil
}

// OpenSyncLog inserts a new running sync-log row. Retried runs always get a
// fresh row so history accumulates.
func (s *IngestStore) OpenSyncLog(ctx context.Context, source string, year int) error {
	query := `INSERT INTO sync_log (source, year, status) VALUES ($1, $2, $3)`

	if _, err := s.db.ExecContext(ctx, query, source, year, model.SyncRunning); err != nil {
		return fmt.Errorf("failed to open sync log for %s/%d: %w", source, year, err)
	}

	return nil
}

// CloseSyncLog closes the most recently started running row for
// (source, year). Closing with no matching open row affects zero rows and is
// not an error: the caller does not need to hold a run identifier.
func (s *IngestStore) CloseSyncLog(ctx context.Context, source string, year int, status string, processed, upserted, updated int, errMsg string) error {
	query := `
		UPDATE sync_log SET
			status = $1,
			processed = $2,
			upserted = $3,
			updated = $4,
			error = $5,
			finished_at = now()
		WHERE id = (
			SELECT id FROM sync_log
			WHERE source = $6 AND year = $7 AND status = 'running'
			ORDER BY started_at DESC
			LIMIT 1
		)
	`

	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query, status, processed, upserted, updated, errVal, source, year)
	if err != nil {
		return fmt.Errorf("failed to close sync log for %s/%d: %w", source, year, err)
	}

	return nil
}

// GetSyncHistory returns the recorded runs for a source, newest first
func (s *IngestStore) GetSyncHistory(ctx context.Context, source string, limit int) ([]model.SyncLog, error) {
	query := `
		SELECT id, source, year, processed, upserted, updated, status, error,
		       started_at, finished_at
		FROM sync_log
		WHERE source = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync history: %w", err)
	}
	defer rows.Close()

	var logs []model.SyncLog
	for rows.Next() {
		var l model.SyncLog
		err := rows.Scan(
			&l.ID,
			&l.Source,
			&l.Year,
			&l.Processed,
			&l.Upserted,
			&l.Updated,
			&l.Status,
			&l.Error,
			&l.StartedAt,
			&l.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
