package procurement

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seaceintel-backend/lib/scrapers/ocds"

	"github.com/stretchr/testify/require"
)

// exercises the whole acquisition-to-canonical path: crawl a mocked
// month, filter by process code, normalize, dedupe.
func TestResolveNomenclatureEndToEnd(t *testing.T) {
	const wanted = "AS-SM-35-2024-ELSE-1"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `{"records": []}`)
			return
		}
		fmt.Fprintf(w, `{"records": [
			{"compiledRelease": {
				"ocid": "ocds-dgv273-seacev3-2024-2407-110",
				"tender": {"id": "1009388", "title": %q, "datePublished": "2024-07-01T08:00:00-05:00"},
				"buyer": {"name": "ELECTRO SUR ESTE S.A.A."}
			}},
			{"compiledRelease": {
				"ocid": "ocds-dgv273-seacev3-2024-9999-1",
				"tender": {"id": "1009399", "title": "LP-SM-2-2024-MPT-1"},
				"buyer": {"name": "MUNICIPALIDAD PROVINCIAL DE TACNA"}
			}}
		]}`, wanted)
	}))
	defer server.Close()

	client, err := ocds.NewClient(ocds.ClientOptions{
		BaseUrl: server.URL,
		Delay:   time.Millisecond,
	})
	require.NoError(t, err)

	year := NomenclatureYear(wanted)
	require.Equal(t, 2024, year)

	crawler := ocds.NewCrawler(client, ocds.CrawlerOptions{
		Filter: ocds.Filter{Text: wanted},
	})
	result := crawler.CrawlMonths(context.Background(), []ocds.MonthScope{{Year: year, Month: 7}})
	require.Equal(t, 1, result.Succeeded())
	require.Len(t, result.Records, 1)

	var records []Record
	for _, raw := range result.Records {
		records = append(records, FromOCDS(raw))
	}
	records = Dedupe(records)

	require.Len(t, records, 1)
	require.Equal(t, wanted, records[0].Nomenclature)
	require.Equal(t, "CUSCO", records[0].Region)
}
