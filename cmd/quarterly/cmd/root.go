// Package cmd implements the quarterly command tree.
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/ingest"
	"quarterly_financials/pkg/core/store"
	"quarterly_financials/pkg/models"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	catalogPath string
	outPath     string
	factsPath   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "quarterly",
		Short: "Quarterly financial statements from SEC company facts",
		Long: `quarterly turns an SEC companyfacts document into a metric by period
table of quarterly figures. Fourth quarters are synthesized from annual
totals and derived metrics such as gross profit and EBITDA are computed.

Facts are fetched from data.sec.gov when a CIK is given, otherwise they
are read from the --facts file.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "metric catalog YAML (built-in catalog when empty)")
	root.PersistentFlags().StringVar(&opts.outPath, "out", "out.csv", "output CSV path")
	root.PersistentFlags().StringVar(&opts.factsPath, "facts", "data.json", "companyfacts JSON used when no CIK is given")

	root.AddCommand(
		newOutCmd(opts),
		newAgentCmd(opts),
		newServeCmd(opts),
		newCatalogCmd(opts),
	)
	return root
}

func (o *options) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(o.catalogPath)
	if err != nil {
		return nil, err
	}
	log.Printf("[CLI] using catalog %s", o.catalogPath)
	return cat, nil
}

// newLoader wires the SEC client to the facts cache. The cache is backed by
// Postgres when DATABASE_URL is set and reachable, otherwise by local files.
func newLoader(ctx context.Context) *ingest.SECFactsLoader {
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Printf("[CLI] WARNING: database unavailable, using file cache: %v", err)
		}
	}
	cache := store.NewFactsCache(store.GetPool(), os.Getenv("FACTS_CACHE_DIR"))
	return ingest.NewSECFactsLoader(ingest.NewEDGARClient(), cache)
}

// loadFacts fetches facts for the CIK in args, or reads the --facts file.
func (o *options) loadFacts(ctx context.Context, args []string) (*models.CompanyFacts, string, error) {
	if len(args) > 0 {
		cik, err := ingest.NormalizeCIK(args[0])
		if err != nil {
			return nil, "", err
		}
		facts, err := newLoader(ctx).LoadFacts(ctx, cik)
		return facts, cik, err
	}

	facts, err := ingest.LoadFile(o.factsPath)
	if err != nil {
		return nil, "", err
	}
	// The document's own CIK is informational; keep it as is when it does not normalize.
	cik := string(facts.CIK)
	if n, err := ingest.NormalizeCIK(cik); err == nil {
		cik = n
	}
	return facts, cik, nil
}

func atMostOneCIK(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one CIK, got %d arguments", len(args))
	}
	return nil
}
