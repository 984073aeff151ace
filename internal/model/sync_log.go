package model

import (
	"database/sql"
	"time"
)

// Sync run statuses
const (
	SyncRunning = "running"
	SyncSuccess = "success"
	SyncError   = "error"
)

// SyncLog records the lifecycle of one collection run
type SyncLog struct {
	ID         int64
	Source     string
	Year       int
	Processed  int
	Upserted   int
	Updated    int
	Status     string
	Error      sql.NullString
	StartedAt  time.Time
	FinishedAt sql.NullTime
}
