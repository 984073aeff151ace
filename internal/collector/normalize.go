package collector

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName produces the join key for the photo directory lookup:
// uppercase, diacritics stripped, everything but letters and spaces removed.
// The bulk archive carries no deputy id usable against the directory, so the
// join is by display name; variants that normalize differently simply miss.
func normalizeName(name string) string {
	upper := strings.ToUpper(name)

	stripped, _, err := transform.String(stripMarks, upper)
	if err != nil {
		stripped = upper
	}

	var b strings.Builder
	for _, r := range stripped {
		if (r >= 'A' && r <= 'Z') || r == ' ' {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
