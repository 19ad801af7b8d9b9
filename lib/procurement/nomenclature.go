package procurement

import (
	"regexp"
	"strconv"
	"strings"
)

var yearPattern = regexp.MustCompile(`^20\d{2}$`)

// Nomenclature is the parsed form of a process code like
// "AS-SM-35-2024-ELSE-1".
type Nomenclature struct {
	Raw      string
	Type     string
	Modality string
	Number   string
	Year     int
	OrgCode  string
	Version  string
}

// ParseNomenclature splits a process code into its components. The
// year is located by pattern rather than position because some codes
// carry extra segments. Parsing is lenient: missing trailing segments
// leave zero values.
func ParseNomenclature(raw string) Nomenclature {
	nom := Nomenclature{Raw: raw, Version: "1"}
	parts := strings.Split(raw, "-")

	for _, p := range parts {
		if yearPattern.MatchString(p) {
			nom.Year, _ = strconv.Atoi(p)
			break
		}
	}

	if len(parts) > 0 {
		nom.Type = parts[0]
	}
	if len(parts) > 1 {
		nom.Modality = parts[1]
	}
	if len(parts) > 2 {
		nom.Number = parts[2]
	}
	if len(parts) > 4 {
		nom.OrgCode = parts[4]
	}
	if len(parts) > 5 {
		nom.Version = parts[5]
	}
	return nom
}

// NomenclatureYear extracts just the process year, 0 when none is
// found. Used to pick which period scopes to crawl when resolving a
// process code through the search endpoint.
func NomenclatureYear(raw string) int {
	return ParseNomenclature(raw).Year
}
