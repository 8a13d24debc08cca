package cmd

import (
	"fmt"
	"log"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/present"
	"quarterly_financials/pkg/core/store"

	"github.com/spf13/cobra"
)

func newOutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "out [CIK]",
		Short: "Compute the quarterly table and write it as CSV",
		Example: `  quarterly out 0000320193
  quarterly out --facts data.json --out apple.csv`,
		Args: atMostOneCIK,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			facts, cik, err := opts.loadFacts(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer store.Close()

			points, err := compute.Compute(facts, cat)
			if err != nil {
				return err
			}
			return writeTable(cmd, opts, cik, facts.EntityName, "out", points, cat)
		},
	}
}

// writeTable pivots points, writes the CSV and records a snapshot when a
// database is configured.
func writeTable(cmd *cobra.Command, opts *options, cik, entityName, source string, points compute.Points, cat *catalog.Catalog) error {
	table := present.Pivot(points, cat)
	if err := table.WriteCSVFile(opts.outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d metrics x %d periods to %s\n", len(table.Rows), len(table.Periods), opts.outPath)

	if pool := store.GetPool(); pool != nil {
		id, err := store.NewStatementRepo(pool).Save(cmd.Context(), cik, entityName, source, table)
		if err != nil {
			log.Printf("[CLI] WARNING: snapshot not saved: %v", err)
		} else {
			log.Printf("[CLI] saved snapshot %s", id)
		}
	}
	return nil
}
