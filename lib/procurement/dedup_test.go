package procurement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func datedRecord(nomenclature string, year int, source string) Record {
	record := Record{
		Nomenclature: nomenclature,
		Provenance:   Provenance{Source: source},
	}
	if year != 0 {
		t := time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC)
		record.PublicationDate = &t
	}
	return record
}

func TestDedupeKeepsLargerYear(t *testing.T) {
	records := []Record{
		datedRecord("AS-SM-35-2024-ELSE-1", 2024, "old"),
		datedRecord("AS-SM-35-2024-ELSE-1", 2025, "reposted"),
	}
	out := Dedupe(records)
	require.Len(t, out, 1)
	require.Equal(t, "reposted", out[0].Provenance.Source)

	// order of arrival must not matter
	out = Dedupe([]Record{records[1], records[0]})
	require.Len(t, out, 1)
	require.Equal(t, "reposted", out[0].Provenance.Source)
}

func TestDedupeEqualYearKeepsFirstSeen(t *testing.T) {
	out := Dedupe([]Record{
		datedRecord("LP-SM-2-2023-MPT-1", 2023, "first"),
		datedRecord("LP-SM-2-2023-MPT-1", 2023, "second"),
	})
	require.Len(t, out, 1)
	require.Equal(t, "first", out[0].Provenance.Source)
}

func TestDedupeKeylessRecordsNeverMerge(t *testing.T) {
	out := Dedupe([]Record{
		datedRecord("", 2024, "a"),
		datedRecord("", 2024, "b"),
	})
	require.Len(t, out, 2)
}

func TestDedupeSortsByNomenclature(t *testing.T) {
	out := Dedupe([]Record{
		datedRecord("CP-SM-9-2024-SEAL-1", 2024, "x"),
		datedRecord("AS-SM-35-2024-ELSE-1", 2024, "y"),
		datedRecord("LP-SM-2-2024-MPT-1", 2024, "z"),
	})
	require.Equal(t, []string{
		"AS-SM-35-2024-ELSE-1",
		"CP-SM-9-2024-SEAL-1",
		"LP-SM-2-2024-MPT-1",
	}, []string{out[0].Nomenclature, out[1].Nomenclature, out[2].Nomenclature})
}
