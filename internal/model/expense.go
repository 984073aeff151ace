package model

import (
	"database/sql"
	"time"
)

// Expense represents one reimbursed expense document.
// AmountCents stores the value in integer cents; the natural key for
// conflict resolution is (Source, ExternalID), not the synthetic ID.
type Expense struct {
	ID               string
	LegislatorID     string
	ExternalID       string
	Year             int
	Month            int
	Date             sql.NullString
	Category         string
	AmountCents      int64
	SupplierName     sql.NullString
	SupplierDocument sql.NullString
	DocumentNumber   sql.NullString
	DocumentType     sql.NullString
	Detail           sql.NullString
	DocumentURL      sql.NullString
	Source           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
