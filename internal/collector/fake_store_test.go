package collector

import (
	"context"
	"errors"
	"sync"

	"github.com/rmoreira/politicos/internal/model"
	"github.com/rmoreira/politicos/internal/store"
)

// fakeStore is an in-memory store.Ingest used to exercise full collector
// runs without a database. Batches are applied directly; transactional
// rollback is not emulated.
type fakeStore struct {
	mu          sync.Mutex
	nextPartyID int64
	parties     map[string]int64
	legislators map[string]*model.Legislator
	expenses    map[string]*model.Expense

	syncLogs []fakeSyncEntry

	// when > 0, UpsertExpense fails once this many calls have been made
	failExpenseAfter int
	expenseCalls     int
}

type fakeSyncEntry struct {
	source    string
	year      int
	status    string
	processed int
	upserted  int
	updated   int
	errMsg    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		parties:     make(map[string]int64),
		legislators: make(map[string]*model.Legislator),
		expenses:    make(map[string]*model.Expense),
	}
}

func (f *fakeStore) WithBatch(ctx context.Context, fn func(b store.BatchTx) error) error {
	return fn(f)
}

func (f *fakeStore) OpenSyncLog(ctx context.Context, source string, year int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncLogs = append(f.syncLogs, fakeSyncEntry{source: source, year: year, status: model.SyncRunning})
	return nil
}

func (f *fakeStore) CloseSyncLog(ctx context.Context, source string, year int, status string, processed, upserted, updated int, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Close the most recently opened running row; no match is a no-op
	for i := len(f.syncLogs) - 1; i >= 0; i-- {
		e := &f.syncLogs[i]
		if e.source == source && e.year == year && e.status == model.SyncRunning {
			e.status = status
			e.processed = processed
			e.upserted = upserted
			e.updated = updated
			e.errMsg = errMsg
			return nil
		}
	}
	return nil
}

func (f *fakeStore) UpsertParty(ctx context.Context, code string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.parties[code]; ok {
		return id, nil
	}
	f.nextPartyID++
	f.parties[code] = f.nextPartyID
	return f.nextPartyID, nil
}

func (f *fakeStore) UpsertLegislator(ctx context.Context, l *model.Legislator) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.legislators[l.ID]; ok {
		existing.Name = l.Name
		existing.Region = l.Region
		existing.PartyID = l.PartyID
		existing.PhotoURL = l.PhotoURL
		return nil
	}

	cp := *l
	f.legislators[l.ID] = &cp
	return nil
}

func (f *fakeStore) UpsertExpense(ctx context.Context, e *model.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.expenseCalls++
	if f.failExpenseAfter > 0 && f.expenseCalls > f.failExpenseAfter {
		return errors.New("storage failure")
	}

	// Natural key: a re-ingested document refreshes mutable fields only
	key := e.Source + ":" + e.ExternalID
	if existing, ok := f.expenses[key]; ok {
		existing.AmountCents = e.AmountCents
		existing.SupplierName = e.SupplierName
		existing.Detail = e.Detail
		return nil
	}

	cp := *e
	f.expenses[key] = &cp
	return nil
}

func (f *fakeStore) lastSyncLog() fakeSyncEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncLogs[len(f.syncLogs)-1]
}
