package commands

import (
	"errors"
	"fmt"
	"os"

	"seaceintel-backend/lib/serviceutil"
	"seaceintel-backend/services/procindex"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(searchCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <nomenclature>",
	Short: "Looks a nomenclature up in the local process index.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		index := openIndex(readConfig())

		entry, err := index.Lookup(ctx, args[0])
		if errors.Is(err, procindex.ErrNotIndexed) {
			suggestions, serr := index.Nearest(ctx, args[0], 3)
			if serr == nil && len(suggestions) > 0 {
				return fmt.Errorf("not indexed; did you mean one of %v", suggestions)
			}
			return errors.New("not indexed; run a crawl over its period first")
		}
		if err != nil {
			serviceutil.Fatal("index lookup failed", err)
		}

		printJson(entry)
		return nil
	},
}

var searchLimit *int

func init() {
	searchLimit = searchCmd.Flags().Int("limit", 20, "Maximum number of rows to print.")
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Searches the local process index by nomenclature or entity.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		index := openIndex(readConfig())

		entries, err := index.Search(ctx, args[0], *searchLimit)
		if err != nil {
			serviceutil.Fatal("index search failed", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Nomenclature", "Entity", "Amount", "Period"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.Nomenclature,
				e.Entity,
				fmt.Sprintf("%.2f", e.Amount),
				fmt.Sprintf("%04d-%02d", e.Year, e.Month),
			})
		}
		t.Render()
	},
}
