package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"seaceintel-backend/lib/browser"
	"seaceintel-backend/lib/cachestore"
	"seaceintel-backend/lib/procurement"
	"seaceintel-backend/lib/scrapers/seace"
	"seaceintel-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	fichaHeadful *bool
	fichaRaw     *bool
	fichaDocs    *string
)

func init() {
	fichaHeadful = fichaCmd.Flags().Bool("headful", false, "Run the browser with a visible window.")
	fichaRaw = fichaCmd.Flags().Bool("raw", false, "Print the raw scraped blocks instead of the normalized record.")
	fichaDocs = fichaCmd.Flags().String("docs", "", "Also download the ficha's attachments into this directory.")
	rootCmd.AddCommand(fichaCmd)
}

var fichaCmd = &cobra.Command{
	Use:   "ficha <nomenclature>",
	Short: "Scrapes a process ficha from the legacy portal by nomenclature.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		cache := openCache(cfg)
		defer cache.Close()

		driver, err := browser.NewChrome(browser.ChromeOptions{Headful: *fichaHeadful})
		if err != nil {
			serviceutil.Fatal("failed to start browser", err)
		}
		defer driver.Close()

		scraper := seace.NewScraper(driver, cache)
		ficha, err := scraper.ScrapeProcess(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("ficha flow failed", err)
		}

		if *fichaDocs != "" {
			downloadDocuments(ctx, ficha)
		}

		if *fichaRaw {
			printJson(ficha)
			return
		}
		printJson(procurement.FromFicha(ficha))
	},
}

func downloadDocuments(ctx context.Context, ficha seace.Ficha) {
	docs, err := seace.NewDocumentClient(seace.DocumentClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize document client", err)
	}
	if err := os.MkdirAll(*fichaDocs, 0755); err != nil {
		serviceutil.Fatal("failed to create documents directory", err)
	}

	for _, doc := range ficha.Documents {
		if doc.URL == "" {
			continue
		}
		payload, err := docs.Fetch(ctx, doc.URL)
		if err != nil {
			slog.Warn("attachment download failed", "name", doc.Name, "err", err)
			continue
		}
		name := doc.Name
		if name == "" {
			name = "documento-" + doc.Number
		}
		path := filepath.Join(*fichaDocs, cachestore.Key(name)+".pdf")
		if err := os.WriteFile(path, payload, 0644); err != nil {
			slog.Warn("attachment write failed", "path", path, "err", err)
			continue
		}
		slog.Info("downloaded attachment", "path", path, "bytes", len(payload))
	}
}
