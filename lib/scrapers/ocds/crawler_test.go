package ocds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterMatch(t *testing.T) {
	title := func(s string) Record {
		return Record{CompiledRelease: &CompiledRelease{
			Tender: &Tender{Title: s},
			Buyer:  &Party{Name: "MUNICIPALIDAD PROVINCIAL DE TRUJILLO"},
		}}
	}

	require.True(t, Filter{}.Match(title("anything")))
	require.True(t, Filter{Text: "CEMENTO"}.Match(title("Adquisición de cemento")))
	require.False(t, Filter{Text: "cemento"}.Match(title("Servicio de limpieza")))
	require.True(t, Filter{Entity: "trujillo"}.Match(title("x")))
	require.False(t, Filter{Entity: "arequipa"}.Match(title("x")))
	// records with no compiled release cannot match a constrained filter
	require.False(t, Filter{Text: "cemento"}.Match(Record{}))
	require.True(t, Filter{}.Match(Record{}))
}

func TestCrawlMonthsFiltersRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `{"records": []}`)
			return
		}
		fmt.Fprintf(w, `{"records": [%s, %s]}`,
			recordJson("ocds-dgv273-1", "Mantenimiento vial distrital", "MUNICIPALIDAD"),
			recordJson("ocds-dgv273-2", "Adquisición de toner", "MUNICIPALIDAD"))
	}))
	defer server.Close()

	crawler := NewCrawler(newTestClient(t, server.URL), CrawlerOptions{
		Filter: Filter{Text: "mantenimiento vial"},
	})
	result := crawler.CrawlMonths(context.Background(), []MonthScope{{Year: 2024, Month: 5}})

	require.Equal(t, 1, result.Attempted())
	require.Equal(t, 1, result.Succeeded())
	require.Len(t, result.Records, 1)
	require.Equal(t, "ocds-dgv273-1", result.Records[0].Compiled().OCID)
}

func TestCrawlMonthsIsolatesFailingScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dataSegmentationID") == "2024-06" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `{"records": []}`)
			return
		}
		fmt.Fprintf(w, `{"records": [%s]}`,
			recordJson("ocds-dgv273-1", "obra", "MUNICIPALIDAD"))
	}))
	defer server.Close()

	crawler := NewCrawler(newTestClient(t, server.URL), CrawlerOptions{})
	result := crawler.CrawlMonths(context.Background(), []MonthScope{
		{Year: 2024, Month: 5},
		{Year: 2024, Month: 6},
		{Year: 2024, Month: 7},
	})

	require.Equal(t, 3, result.Attempted())
	require.Equal(t, 2, result.Succeeded())
	require.Equal(t, 1, result.Failed())
	require.Len(t, result.Records, 2)

	require.NoError(t, result.Units[0].Err)
	require.Error(t, result.Units[1].Err)
	require.Equal(t, "2024-06", result.Units[1].Scope)
	require.NoError(t, result.Units[2].Err)
}

func TestCrawlYearUsesAvailableMonths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files":
			fmt.Fprint(w, `{"results": [
				{"year": "2023", "month": "11"},
				{"year": "2023", "month": "12"}
			]}`)
		case "/records":
			if r.URL.Query().Get("page") != "1" {
				fmt.Fprint(w, `{"records": []}`)
				return
			}
			fmt.Fprintf(w, `{"records": [%s]}`,
				recordJson("ocds-dgv273-"+r.URL.Query().Get("dataSegmentationID"), "obra", "GOBIERNO"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	crawler := NewCrawler(newTestClient(t, server.URL), CrawlerOptions{})
	result, err := crawler.CrawlYear(context.Background(), 2023)
	require.NoError(t, err)

	require.Equal(t, 2, result.Attempted())
	require.Equal(t, []CrawlUnit{
		{Scope: "2023-11", Records: 1},
		{Scope: "2023-12", Records: 1},
	}, result.Units)
}
