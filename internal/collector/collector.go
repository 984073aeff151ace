// Package collector ingests upstream expense datasets into the store.
// Each legislative house has its own collector behind the shared Collector
// contract; they share only the sync-log lifecycle and the batching
// discipline.
package collector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rmoreira/politicos/internal/model"
	"github.com/rmoreira/politicos/internal/store"
	"github.com/sirupsen/logrus"
)

// Result summarizes one collection run. Upserted counts every expense upsert
// performed; with unconditional upserts inserts and updates are not
// distinguished, so Updated stays zero.
type Result struct {
	Source    string
	Year      int
	Processed int
	Upserted  int
	Updated   int
	Duration  time.Duration
}

// Collector fetches one upstream source for a year and loads it into the store
type Collector interface {
	Collect(ctx context.Context, year int) (*Result, error)
}

// closeRun finishes the sync-log row opened for this run. It runs in a defer
// so the closing write happens whether the run completed or failed partway,
// even when the context has been cancelled.
func closeRun(ctx context.Context, st store.Ingest, log *logrus.Entry, res *Result, start time.Time, runErr error) {
	res.Duration = time.Since(start)

	status := model.SyncSuccess
	msg := ""
	if runErr != nil {
		status = model.SyncError
		msg = runErr.Error()
	}

	ctx = context.WithoutCancel(ctx)
	if err := st.CloseSyncLog(ctx, res.Source, res.Year, status, res.Processed, res.Upserted, res.Updated, msg); err != nil {
		log.WithError(err).Warn("failed to close sync log")
	}
}

// fetchJSON performs a GET request and decodes the response body into v.
// Upstream failures are terminal for the run; retries are operator-driven.
func fetchJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
