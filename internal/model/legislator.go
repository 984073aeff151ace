package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Source identifies the legislative house a record came from
const (
	SourceChamber = "camara"
	SourceSenate  = "senado"
)

// ChamberLegislatorID builds the namespaced id for a deputy
func ChamberLegislatorID(externalID int64) string {
	return fmt.Sprintf("dep_%d", externalID)
}

// SenateLegislatorID builds the namespaced id for a senator
func SenateLegislatorID(externalID int64) string {
	return fmt.Sprintf("sen_%d", externalID)
}

// Legislator represents a deputy or senator.
// The ID is namespaced by house ("dep_<id>" or "sen_<id>") so the two
// upstream numeric id spaces never collide.
type Legislator struct {
	ID         string
	Source     string
	ExternalID int64
	Name       string
	CivilName  sql.NullString
	TaxID      sql.NullString
	Region     sql.NullString
	PartyID    sql.NullInt64
	Sex        sql.NullString
	BirthDate  sql.NullTime
	PhotoURL   sql.NullString
	Email      sql.NullString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
