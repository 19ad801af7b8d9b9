package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"seaceintel-backend/lib/procurement"
	"seaceintel-backend/lib/scrapers/ocds"
	"seaceintel-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	crawlYear   *int
	crawlMonth  *int
	crawlEntity *string
	crawlFilter *string
	crawlBulk   *bool
	crawlOut    *string
)

func init() {
	crawlYear = crawlCmd.Flags().Int("year", 0, "Year to crawl (required).")
	crawlMonth = crawlCmd.Flags().Int("month", 0, "Restrict the crawl to one month.")
	crawlEntity = crawlCmd.Flags().String("entity", "", "Keep only processes of entities matching this text.")
	crawlFilter = crawlCmd.Flags().String("filter", "", "Keep only processes whose title matches this text.")
	crawlBulk = crawlCmd.Flags().Bool("bulk", false, "Download monthly archives instead of paging the search endpoint.")
	crawlOut = crawlCmd.Flags().String("out", "", "Write normalized records to this JSON file.")
	crawlCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl --year <year> [--month <month>] [--entity <text>] [--bulk]",
	Short: "Crawls a period of the open-data api, normalizes and indexes the result.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		cache := openCache(cfg)
		defer cache.Close()

		mode := ocds.ModePaginated
		if *crawlBulk {
			mode = ocds.ModeBulk
		}
		crawler := ocds.NewCrawler(openClient(cfg, cache), ocds.CrawlerOptions{
			Mode: mode,
			Filter: ocds.Filter{
				Entity: *crawlEntity,
				Text:   *crawlFilter,
			},
		})

		start := time.Now()
		var result ocds.Result
		if *crawlMonth != 0 {
			result = crawler.CrawlMonths(ctx, []ocds.MonthScope{
				{Year: *crawlYear, Month: *crawlMonth},
			})
		} else {
			var err error
			result, err = crawler.CrawlYear(ctx, *crawlYear)
			if err != nil {
				serviceutil.Fatal("failed to list available months", err)
			}
		}

		records := make([]procurement.Record, 0, len(result.Records))
		for _, raw := range result.Records {
			records = append(records, procurement.FromOCDS(raw))
		}
		records = procurement.Dedupe(records)

		index := openIndex(cfg)
		if err := index.IndexRecords(ctx, records); err != nil {
			serviceutil.Fatal("failed to update process index", err)
		}

		printCrawlSummary(result, len(records), time.Since(start))

		if *crawlOut != "" {
			writeJsonFile(*crawlOut, records)
			slog.Info("wrote normalized records", "path", *crawlOut, "records", len(records))
		}
	},
}

func printCrawlSummary(result ocds.Result, normalized int, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Scope", "Records", "Status"})
	for _, unit := range result.Units {
		status := "ok"
		if unit.Err != nil {
			status = unit.Err.Error()
		}
		t.AppendRow(table.Row{unit.Scope, unit.Records, status})
	}
	t.AppendFooter(table.Row{
		"total",
		normalized,
		fmt.Sprintf("%d/%d scopes in %.1fs", result.Succeeded(), result.Attempted(), elapsed.Seconds()),
	})
	t.Render()
}
