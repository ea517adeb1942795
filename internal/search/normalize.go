package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeKeyword prepares a keyword for providers. Full-width characters
// are folded to their narrow forms and whitespace is collapsed. Case and
// punctuation are kept.
func NormalizeKeyword(keyword string) string {
	s, _, err := transform.String(transform.Chain(norm.NFKC, width.Fold), keyword)
	if err != nil {
		s = keyword
	}
	return strings.Join(strings.Fields(s), " ")
}

// cleanTitle reduces a title to lowercase letters, digits and single spaces
// for similarity scoring.
func cleanTitle(title string) string {
	s := strings.ToLower(NormalizeKeyword(title))
	s = removeAccents(s)
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
