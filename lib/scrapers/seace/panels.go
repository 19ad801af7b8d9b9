package seace

import (
	"strings"

	"seaceintel-backend/lib/htmlutil"
	"seaceintel-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// extractPanels walks every titled panel on the ficha and routes it
// into the matching block. Panels are matched by heading text, not by
// position, because the portal reorders and omits them freely. The
// entity and procedure headings both contain "informacion general",
// so the more specific headings are checked first.
func extractPanels(doc *goquery.Document, ficha *Ficha) {
	doc.Find("div.ui-panel").Each(func(_ int, panel *goquery.Selection) {
		title := textutil.NormalizeLabel(panel.Find(".ui-panel-title").First().Text())
		if title == "" {
			return
		}

		switch {
		case strings.Contains(title, "informacion general de la entidad"):
			ficha.Entity = htmlutil.LabelValueRows(panel)
		case strings.Contains(title, "informacion general del procedimiento"):
			ficha.Procedure = htmlutil.LabelValueRows(panel)
		case strings.Contains(title, "cronograma"):
			ficha.Schedule = scheduleRows(panel)
		case strings.Contains(title, "lista de documentos"):
			ficha.Documents = documentRows(panel)
		case strings.Contains(title, "informacion general"):
			ficha.General = htmlutil.LabelValueRows(panel)
		}
	})
}

func scheduleRows(panel *goquery.Selection) []ScheduleRow {
	var rows []ScheduleRow
	for _, cells := range htmlutil.TableRows(panel) {
		if len(cells) < 3 {
			continue
		}
		rows = append(rows, ScheduleRow{
			Stage: cells[0],
			Start: cells[1],
			End:   cells[2],
		})
	}
	return rows
}

func documentRows(panel *goquery.Selection) []DocumentRow {
	var rows []DocumentRow
	table := panel.Find("table").First()
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		doc := DocumentRow{
			Number: htmlutil.CellText(cells.Eq(0)),
			Stage:  htmlutil.CellText(cells.Eq(1)),
			Name:   htmlutil.CellText(cells.Eq(2)),
			Date:   htmlutil.CellText(cells.Eq(4)),
		}
		doc.URL, _ = cells.Eq(3).Find("a").First().Attr("href")
		rows = append(rows, doc)
	})
	return rows
}

// extractBidders finds the offers table by its headers; the portal
// gives it no stable id or class.
func extractBidders(doc *goquery.Document) []BidderRow {
	var bidders []BidderRow
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headers := table.Find("th").Map(func(_ int, th *goquery.Selection) string {
			return textutil.NormalizeLabel(th.Text())
		})
		joined := strings.Join(headers, " ")
		if !strings.Contains(joined, "postor") && !strings.Contains(joined, "ruc") {
			return true
		}

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			bidder := BidderRow{
				RUC:  htmlutil.CellText(cells.Eq(0)),
				Name: htmlutil.CellText(cells.Eq(1)),
			}
			if cells.Length() > 2 {
				bidder.Amount = htmlutil.CellText(cells.Eq(2))
			}
			bidders = append(bidders, bidder)
		})
		return false
	})
	return bidders
}
