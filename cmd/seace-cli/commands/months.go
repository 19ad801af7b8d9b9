package commands

import (
	"fmt"

	"seaceintel-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var monthsYear *int

func init() {
	monthsYear = monthsCmd.Flags().Int("year", 0, "Year to list (required).")
	monthsCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(monthsCmd)
}

var monthsCmd = &cobra.Command{
	Use:   "months --year <year>",
	Short: "Lists the months of a year the open-data api has bulk archives for.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		cache := openCache(cfg)
		defer cache.Close()

		months, err := openClient(cfg, cache).AvailableMonths(cmd.Context(), *monthsYear, "")
		if err != nil {
			serviceutil.Fatal("failed to list available months", err)
		}
		for _, month := range months {
			fmt.Printf("%04d-%02d\n", *monthsYear, month)
		}
	},
}
