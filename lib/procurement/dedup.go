package procurement

import "sort"

// Dedupe collapses records that share a nomenclature. Reposted
// processes publish a fresh record under the same code; the one with
// the larger publication year shadows older state, and on equal years
// the first-seen record is kept. Records without a nomenclature are
// never merged. Output is sorted by nomenclature so repeated runs are
// byte-stable, with the keyless records trailing in input order.
func Dedupe(records []Record) []Record {
	byKey := map[string]int{}
	var keyed []Record
	var keyless []Record

	for _, record := range records {
		if record.Nomenclature == "" {
			keyless = append(keyless, record)
			continue
		}
		at, seen := byKey[record.Nomenclature]
		if !seen {
			byKey[record.Nomenclature] = len(keyed)
			keyed = append(keyed, record)
			continue
		}
		if record.PublicationYear() > keyed[at].PublicationYear() {
			keyed[at] = record
		}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return keyed[i].Nomenclature < keyed[j].Nomenclature
	})
	return append(keyed, keyless...)
}
