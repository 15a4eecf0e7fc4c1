package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/output"
	"github.com/Aman-CERP/docsearch/internal/search"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var jsonOut bool
	var offline bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Long: `Runs a hybrid query against the corpus. Short queries lean on
keyword matching, longer ones on semantic similarity.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
			if limit <= 0 {
				limit = cfg.Search.MaxResults
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

			resp, err := engine.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return out.ResponseJSON(resp)
			}
			out.Response(resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "k", 0, "Maximum results to return (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit results as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings (no model server required)")
	return cmd
}
