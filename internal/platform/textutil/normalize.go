package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail folds an address into the canonical form used as the account
// and subscription lookup key. Unicode compatibility variants (full-width
// letters, ligatures) collapse to their plain equivalents before lowercasing,
// so visually identical addresses map to the same document.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return cases.Lower(language.Und).String(norm.NFKC.String(email))
}

// NormalizeName trims a display name and collapses runs of whitespace to
// single spaces, after folding compatibility variants.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(name)), " ")
}
