package collector

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseCents converts a decimal amount string to integer cents, rounding
// half up at the cent boundary. Unparseable or negative amounts become zero:
// stored amounts are always non-negative minor units.
func parseCents(s string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	cents := d.Shift(2).Round(0).IntPart()
	if cents < 0 {
		return 0
	}

	return cents
}
