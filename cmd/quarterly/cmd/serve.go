package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"quarterly_financials/pkg/api/config"
	"quarterly_financials/pkg/api/statements"
	"quarterly_financials/pkg/core/store"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr       string
		modelsPath string
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve statements over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			agentMgr, err := newAgentManager(modelsPath, "")
			if err != nil {
				return err
			}

			loader := newLoader(ctx)
			defer store.Close()

			var repo statements.Recorder
			if pool := store.GetPool(); pool != nil {
				repo = store.NewStatementRepo(pool)
			}

			mux := http.NewServeMux()

			// Statement endpoints
			statementsHandler := statements.NewHandler(loader, cat, repo, agentMgr)
			mux.HandleFunc("/api/statements", statementsHandler.HandleStatements)

			// Config endpoints
			configHandler := config.NewHandler(agentMgr)
			mux.HandleFunc("/api/config", configHandler.HandleConfig)
			mux.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

			srv := &http.Server{Addr: addr, Handler: mux}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			log.Printf("[Server] listening on %s", addr)
			log.Printf("[Server]   - GET  /api/statements?cik=&ticker=&format=json|csv|markdown&agent=1")
			log.Printf("[Server]   - GET  /api/config")
			log.Printf("[Server]   - POST /api/config/switch")

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	c.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	c.Flags().StringVar(&modelsPath, "models", "config/models.yaml", "agent provider config")
	return c
}
