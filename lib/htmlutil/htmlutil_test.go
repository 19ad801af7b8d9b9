package htmlutil

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const labelValueHtml = `
<div class="panel">
  <table>
    <tr><td>Nomenclatura:</td><td>AS-SM-35-2024-ELSE-1</td></tr>
    <tr><td>Moneda:</td><td>SOLES</td></tr>
    <tr><td></td><td>orphan value</td></tr>
    <tr><td>single cell</td></tr>
  </table>
</div>`

func TestLabelValueRows(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(labelValueHtml))
	require.NoError(t, err)

	rows := LabelValueRows(doc.Find("div.panel"))
	require.Equal(t, map[string]string{
		"Nomenclatura": "AS-SM-35-2024-ELSE-1",
		"Moneda":       "SOLES",
	}, rows)
}

const tableHtml = `
<div class="panel">
  <table>
    <tr><th>Etapa</th><th>Inicio</th><th>Fin</th></tr>
    <tr><td>Convocatoria</td><td>01/07/2024</td><td>05/07/2024</td></tr>
    <tr><td>Otorgamiento de la  Buena Pro</td><td>20/08/2024</td><td>20/08/2024</td></tr>
  </table>
</div>`

func TestTableRows(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(tableHtml))
	require.NoError(t, err)

	rows := TableRows(doc.Find("div.panel"))
	require.Len(t, rows, 2)
	require.Equal(t, []string{"Convocatoria", "01/07/2024", "05/07/2024"}, rows[0])
	require.Equal(t, "Otorgamiento de la Buena Pro", rows[1][0])
}
