package commands

import (
	"errors"

	"seaceintel-backend/lib/procurement"
	"seaceintel-backend/lib/restyutil"
	"seaceintel-backend/lib/scrapers/ocds"
	"seaceintel-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	recordTender *bool
	recordSource *string
)

func init() {
	recordTender = recordCmd.Flags().Bool("tender", false, "Treat the argument as a tender id instead of an ocid.")
	recordSource = recordCmd.Flags().String("source", "", "Source system for tender-id lookups (default seace_v3).")
	rootCmd.AddCommand(recordCmd)
}

var recordCmd = &cobra.Command{
	Use:   "record <ocid | --tender <tender-id>>",
	Short: "Fetches one process from the open-data api and prints its normalized form.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := readConfig()
		cache := openCache(cfg)
		defer cache.Close()
		client := openClient(cfg, cache)

		var raw ocds.Record
		var err error
		if *recordTender {
			raw, err = client.GetByTenderID(ctx, *recordSource, args[0])
		} else {
			raw, err = client.GetByOCID(ctx, args[0])
		}
		if errors.Is(err, restyutil.ErrNotFound) {
			return errors.New("no record with that id")
		}
		if err != nil {
			serviceutil.Fatal("failed to fetch record", err)
		}

		printJson(procurement.FromOCDS(raw))
		return nil
	},
}
