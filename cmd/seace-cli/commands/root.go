package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"seaceintel-backend/lib/cachestore"
	"seaceintel-backend/lib/configutil"
	"seaceintel-backend/lib/scrapers/ocds"
	"seaceintel-backend/lib/serviceutil"
	"seaceintel-backend/lib/sqliteutil"
	"seaceintel-backend/services/procindex"
	"seaceintel-backend/services/procindex/db"

	"github.com/spf13/cobra"
)

type Config struct {
	CacheDir string `json:"cache_dir"`
	IndexDb  string `json:"index_db"`
	// milliseconds between api requests
	RequestDelay int `json:"request_delay"`
}

var rootCmd = &cobra.Command{
	Use:   "seace-cli",
	Short: "seace-cli acquires and normalizes peruvian public procurement processes.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		// defaults are enough for ad hoc runs
		cfg = Config{}
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = ".dev/cache"
	}
	if cfg.IndexDb == "" {
		cfg.IndexDb = "procindex.db"
	}
	return cfg
}

func openCache(cfg Config) *cachestore.Store {
	cache, err := cachestore.Open(cfg.CacheDir)
	if err != nil {
		serviceutil.Fatal("failed to open cache store", err)
	}
	return cache
}

func openClient(cfg Config, cache *cachestore.Store) *ocds.Client {
	client, err := ocds.NewClient(ocds.ClientOptions{
		Delay: time.Duration(cfg.RequestDelay) * time.Millisecond,
		Cache: cache,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize api client", err)
	}
	return client
}

func openIndex(cfg Config) procindex.Service {
	sqlite, err := sqliteutil.OpenDB(db.Schema, cfg.IndexDb)
	if err != nil {
		serviceutil.Fatal("failed to open process index", err)
	}
	return procindex.NewService(sqlite)
}

func printJson(value any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		serviceutil.Fatal("failed to encode output", err)
	}
}

func writeJsonFile(path string, value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		serviceutil.Fatal("failed to encode output", err)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		serviceutil.Fatal("failed to write output file", err)
	}
}
