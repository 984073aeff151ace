package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rmoreira/politicos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, mock
}

func TestWithBatchCommits(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO parties (code)")).
		WithArgs("ABC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	err := s.WithBatch(context.Background(), func(b BatchTx) error {
		id, err := b.UpsertParty(context.Background(), "ABC")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(7), id)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithBatchRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.WithBatch(context.Background(), func(b BatchTx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpsertLegislator(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO legislators")).
		WithArgs("dep_11", model.SourceChamber, int64(11), "João da Silva",
			nil, "11122233344", "SP", int64(7), nil, nil,
			"https://fotos/11.jpg", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithBatch(context.Background(), func(b BatchTx) error {
		return b.UpsertLegislator(context.Background(), &model.Legislator{
			ID:         "dep_11",
			Source:     model.SourceChamber,
			ExternalID: 11,
			Name:       "João da Silva",
			TaxID:      sql.NullString{String: "11122233344", Valid: true},
			Region:     sql.NullString{String: "SP", Valid: true},
			PartyID:    sql.NullInt64{Int64: 7, Valid: true},
			PhotoURL:   sql.NullString{String: "https://fotos/11.jpg", Valid: true},
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpsertExpense(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (source, external_id) DO UPDATE")).
		WithArgs("dep_11_100", "dep_11", "100", 2024, 1, "2024-01-10",
			"COMBUSTÍVEIS E LUBRIFICANTES", int64(10050), "Posto Alfa",
			"00111222000133", "NF-1", "Nota Fiscal", nil, "https://docs/100",
			model.SourceChamber).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithBatch(context.Background(), func(b BatchTx) error {
		return b.UpsertExpense(context.Background(), &model.Expense{
			ID:               "dep_11_100",
			LegislatorID:     "dep_11",
			ExternalID:       "100",
			Year:             2024,
			Month:            1,
			Date:             sql.NullString{String: "2024-01-10", Valid: true},
			Category:         "COMBUSTÍVEIS E LUBRIFICANTES",
			AmountCents:      10050,
			SupplierName:     sql.NullString{String: "Posto Alfa", Valid: true},
			SupplierDocument: sql.NullString{String: "00111222000133", Valid: true},
			DocumentNumber:   sql.NullString{String: "NF-1", Valid: true},
			DocumentType:     sql.NullString{String: "Nota Fiscal", Valid: true},
			DocumentURL:      sql.NullString{String: "https://docs/100", Valid: true},
			Source:           model.SourceChamber,
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSyncLog(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_log (source, year, status)")).
		WithArgs(model.SourceSenate, 2024, model.SyncRunning).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.OpenSyncLog(context.Background(), model.SourceSenate, 2024)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSyncLog(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectExec("UPDATE sync_log SET").
		WithArgs(model.SyncSuccess, 3, 3, 0, nil, model.SourceChamber, 2024).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CloseSyncLog(context.Background(), model.SourceChamber, 2024,
		model.SyncSuccess, 3, 3, 0, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSyncLogWithError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	mock.ExpectExec("UPDATE sync_log SET").
		WithArgs(model.SyncError, 0, 0, 0, "download failed", model.SourceChamber, 2024).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CloseSyncLog(context.Background(), model.SourceChamber, 2024,
		model.SyncError, 0, 0, 0, "download failed")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSyncLogNoOpenRow(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	// No matching running row: zero rows affected, no error surfaced
	mock.ExpectExec("UPDATE sync_log SET").
		WithArgs(model.SyncSuccess, 1, 1, 0, nil, model.SourceSenate, 2023).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.CloseSyncLog(context.Background(), model.SourceSenate, 2023,
		model.SyncSuccess, 1, 1, 0, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSyncHistory(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewIngestStore(db)

	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "source", "year", "processed", "upserted", "updated",
		"status", "error", "started_at", "finished_at",
	}).
		AddRow(2, model.SourceChamber, 2024, 3, 3, 0, model.SyncSuccess, nil, started, nil).
		AddRow(1, model.SourceChamber, 2024, 0, 0, 0, model.SyncError, "download failed", started.Add(-time.Hour), nil)

	mock.ExpectQuery("FROM sync_log").
		WithArgs(model.SourceChamber, 10).
		WillReturnRows(rows)

	logs, err := s.GetSyncHistory(context.Background(), model.SourceChamber, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.SyncSuccess, logs[0].Status)
	assert.Equal(t, "download failed", logs[1].Error.String)
	assert.NoError(t, mock.ExpectationsWereMet())
}
