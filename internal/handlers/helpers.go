package handlers

import "database/sql"

const maxPageSize = 100

// centsToValue converts integer cents to the currency value served by the API
func centsToValue(cents int64) float64 {
	return float64(cents) / 100
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
