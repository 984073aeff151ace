package model

import (
	"database/sql"
	"time"
)

// Party represents a political party, identified by its acronym
type Party struct {
	ID        int64
	Code      string
	Name      sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}
