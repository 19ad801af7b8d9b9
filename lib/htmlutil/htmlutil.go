package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"seaceintel-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CellText returns the cleaned visible text of a selection.
func CellText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		getTextRecursive(node, &buffer)
	}
	return textutil.CleanCell(removeNonPrintable(buffer.String()))
}

// LabelValueRows reads a two-column table layout into label/value
// pairs. Rows with fewer than two cells, or an empty label or value,
// are skipped. Labels keep their original casing; trailing colons are
// stripped.
func LabelValueRows(panel *goquery.Selection) map[string]string {
	out := map[string]string{}
	panel.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSuffix(CellText(cells.Eq(0)), ":")
		value := CellText(cells.Eq(1))
		if label != "" && value != "" {
			out[label] = value
		}
	})
	return out
}

// TableRows returns the cell text of each body row of the first table
// inside the selection, skipping the header row.
func TableRows(sel *goquery.Selection) [][]string {
	var rows [][]string
	table := sel.Find("table").First()
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, CellText(cell))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}
