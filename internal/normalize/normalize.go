// Package normalize folds text into the comparison space shared by alias
// keys and scanned article text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key lowercases s and strips combining marks, so "Müller" and "muller"
// produce the same key. Letters, digits, spaces and punctuation are kept.
func Key(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		// transform only fails on malformed chains; fall back to the lowercase form
		return strings.ToLower(s)
	}
	return out
}
