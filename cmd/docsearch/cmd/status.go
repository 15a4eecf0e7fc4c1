package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/cache"
	"github.com/Aman-CERP/docsearch/internal/output"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show corpus and index cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}

			snap, err := loadSnapshot(cfg)
			if err != nil {
				return fmt.Errorf("corpus: %w", err)
			}

			manager := cache.NewManager(cfg.Cache.Dir, vectorConfig(cfg), keywordConfig(cfg))

			out.Statusf("corpus:       %s (%d documents)", cfg.Corpus.Path, snap.Len())
			out.Statusf("fingerprint:  %.24s...", snap.Fingerprint())
			out.Statusf("cache dir:    %s", cfg.Cache.Dir)
			out.Statusf("semantic:     %s", manager.VectorState(snap))
			out.Statusf("keyword:      %s", manager.KeywordState(snap))
			return nil
		},
	}
}
