package procurement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCurrency(t *testing.T) {
	cases := map[string]string{
		"DOLAR AMERICANO": "USD",
		"dolar":           "USD",
		"USD":             "USD",
		"EURO":            "EUR",
		"eur":             "EUR",
		"SOLES":           "PEN",
		"S/ 100.00":       "PEN",
		"":                "PEN",
	}
	for raw, want := range cases {
		require.Equal(t, want, NormalizeCurrency(raw), "raw=%q", raw)
	}
}

func TestParseAmount(t *testing.T) {
	amount, ok := ParseAmount("S/ 1,234,567.89")
	require.True(t, ok)
	require.InDelta(t, 1234567.89, amount, 0.001)

	amount, ok = ParseAmount("100000")
	require.True(t, ok)
	require.InDelta(t, 100000.0, amount, 0.001)

	_, ok = ParseAmount("")
	require.False(t, ok)
	_, ok = ParseAmount("pendiente")
	require.False(t, ok)
}

func TestDetectRegion(t *testing.T) {
	require.Equal(t, "LA LIBERTAD", DetectRegion("MUNICIPALIDAD PROVINCIAL DE TRUJILLO"))
	require.Equal(t, "CUSCO", DetectRegion("Electro Sur Este S.A.A."))
	require.Equal(t, "LIMA", DetectRegion("MINISTERIO DE SALUD"))
	// no keyword matches
	require.Equal(t, "LIMA", DetectRegion("ZZZ"))
	require.Equal(t, "LIMA", DetectRegion(""))
}

func TestNormalizeStage(t *testing.T) {
	require.Equal(t, "CONVOCATORIA", NormalizeStage("Convocatoria"))
	require.Equal(t, "PRESENTACION_PROPUESTAS", NormalizeStage("Presentacion de ofertas(Electronica)"))
	require.Equal(t, "PRESENTACION_PROPUESTAS", NormalizeStage("Presentación de ofertas(Electrónica)"))
	// unknown stages pass through
	require.Equal(t, "Etapa Nueva", NormalizeStage("Etapa Nueva"))
}

func TestParseNomenclature(t *testing.T) {
	nom := ParseNomenclature("AS-SM-35-2024-ELSE-1")
	require.Equal(t, Nomenclature{
		Raw:      "AS-SM-35-2024-ELSE-1",
		Type:     "AS",
		Modality: "SM",
		Number:   "35",
		Year:     2024,
		OrgCode:  "ELSE",
		Version:  "1",
	}, nom)

	// version defaults when the trailing segment is missing
	require.Equal(t, "1", ParseNomenclature("AS-SM-35-2024-ELSE").Version)
	require.Equal(t, 0, NomenclatureYear("sin-formato"))
	require.Equal(t, 2023, NomenclatureYear("LP-SM-2-2023-MPT-2"))
}
