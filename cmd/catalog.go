package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/foodaccess-cli/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the intervention type catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List intervention types and their cost and reach constants",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		formatCatalog(os.Stdout, cat)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <type-key>",
	Short: "Show the full definition of one intervention type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		typ, err := cat.Get(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(typ)
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}

func formatCatalog(out io.Writer, cat *catalog.Catalog) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tNAME\tSETUP\tMONTHLY\tRADIUS\tREACH\tJOBS\tTIMEFRAME")

	for _, t := range cat.All() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.0f\t$%.0f\t%.0fm\t%.0f\t%d\t%s\n",
			t.Key, t.Name, t.SetupCost, t.OperatingCostMonthly,
			t.ServiceRadiusM, t.ReachMultiplier, t.Jobs, t.Timeframe,
		)
	}
	_ = w.Flush()
}
