package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/api"
	"github.com/Aman-CERP/docsearch/internal/output"
	"github.com/Aman-CERP/docsearch/internal/search"
)

func newServeCmd() *cobra.Command {
	var addr string
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve search over HTTP",
		Long: `Loads the indexes and exposes GET /healthz plus GET and POST
/search on the configured address until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			snap, err := loadSnapshot(cfg)
			if err != nil {
				return fmt.Errorf("corpus: %w", err)
			}

			indexes, err := buildIndexes(cmd.Context(), cfg, snap, offline, false)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			engine := search.NewEngine(engineConfig(cfg))
			engine.Swap(indexes)

			server := api.NewServer(cfg.Server.Addr, engine)

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()

			out.Successf("serving on http://%s (capability: %s)", cfg.Server.Addr, engine.Capability())

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			case <-cmd.Context().Done():
			}

			out.Statusf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings (no model server required)")
	return cmd
}
