package cmd

import (
	"fmt"
	"log"
	"os"

	"quarterly_financials/pkg/core/agent"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/prompt"
	"quarterly_financials/pkg/core/store"

	"github.com/spf13/cobra"
)

func newAgentCmd(opts *options) *cobra.Command {
	var (
		modelsPath  string
		promptsPath string
		provider    string
		maxRounds   int
	)

	c := &cobra.Command{
		Use:   "agent [CIK]",
		Short: "Fill blank cells with a language model, then write the CSV",
		Long: `agent runs the deterministic computation and then asks a language model
to locate or derive the cells that are still blank, using the raw facts
as evidence. Cells the model cannot resolve are left blank.

Provider API keys are read from GEMINI_API_KEY and DEEPSEEK_API_KEY.`,
		Args: atMostOneCIK,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			mgr, err := newAgentManager(modelsPath, provider)
			if err != nil {
				return err
			}
			if _, err := os.Stat(promptsPath); err == nil {
				if err := prompt.LoadFromDirectory(promptsPath); err != nil {
					log.Printf("[CLI] WARNING: failed to load prompt library: %v (using built-in prompts)", err)
				}
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

			filler := agent.NewFiller(mgr, cat)
			if maxRounds > 0 {
				filler.MaxRounds = maxRounds
			}
			report, runErr := filler.Run(cmd.Context(), facts, points)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d rounds, %d filled, %d abandoned, %d blanks remaining\n",
					report.RunID, report.Rounds, report.Filled, report.Abandoned, report.Remaining)
			}

			// Whatever was filled before a failure is still written.
			if err := writeTable(cmd, opts, cik, facts.EntityName, "agent", points, cat); err != nil {
				return err
			}
			return runErr
		},
	}

	c.Flags().StringVar(&modelsPath, "models", "config/models.yaml", "agent provider config")
	c.Flags().StringVar(&promptsPath, "prompts", "resources", "prompt library directory (resources/prompts/agent/filler.json overrides the built-in prompt)")
	c.Flags().StringVar(&provider, "provider", "", "provider for the filler agent, replacing its models.yaml entry (gemini, gemini-classic, deepseek)")
	c.Flags().IntVar(&maxRounds, "max-rounds", 0, "maximum model rounds (default 20)")
	return c
}

// newAgentManager loads models.yaml and applies the --provider flag to the
// filler agent itself, so a provider or model pinned in the file cannot
// shadow the flag.
func newAgentManager(modelsPath, provider string) (*agent.Manager, error) {
	cfg, err := agent.LoadConfig(modelsPath)
	if err != nil {
		return nil, err
	}
	mgr := agent.NewManager(cfg)
	if provider != "" {
		if err := mgr.SetAgentProvider(agent.AgentFiller, provider); err != nil {
			return nil, err
		}
	}
	return mgr, nil
}
