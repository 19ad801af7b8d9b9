package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// accented characters show up inconsistently across the legacy portal
// and the open-data API ("Informacion" vs "Información"), so matching
// is always done on the folded form
var accentFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
	"ñ", "n", "Ñ", "N", "ü", "u", "Ü", "U",
)

func FoldAccents(s string) string {
	return accentFold.Replace(s)
}

// NormalizeLabel lowercases, folds accents and collapses whitespace.
// Used to match panel headings and attribute labels scraped from the
// ficha, which vary in casing and padding between portal versions.
func NormalizeLabel(s string) string {
	s = FoldAccents(s)
	s = strings.ToLower(s)
	s = strings.TrimRight(strings.TrimSpace(s), ":")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsFold reports whether needle occurs in haystack, ignoring
// case and accents. This is the client-side filter primitive: the
// remote title-filter endpoint is unreliable so entity/nomenclature
// filters are always re-applied locally.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(
		strings.ToUpper(FoldAccents(haystack)),
		strings.ToUpper(FoldAccents(needle)),
	)
}

// CleanCell trims a scraped table cell down to a single-spaced string.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}
