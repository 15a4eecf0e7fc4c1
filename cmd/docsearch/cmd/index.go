package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/cache"
	"github.com/Aman-CERP/docsearch/internal/output"
)

func newIndexCmd() *cobra.Command {
	var rebuild bool
	var offline bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh the search indexes",
		Long: `Reads the corpus catalog and builds both index artifacts: the
dense embedding index and the TF-IDF keyword index. Artifacts that
already match the corpus are reused unless --rebuild is given.`,
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
			out.Statusf("corpus: %d documents from %s", snap.Len(), cfg.Corpus.Path)

			manager := cache.NewManager(cfg.Cache.Dir, vectorConfig(cfg), keywordConfig(cfg))
			if rebuild {
				if err := manager.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				out.Statusf("cleared cache at %s", cfg.Cache.Dir)
			}

			indexes, err := buildIndexes(cmd.Context(), cfg, snap, offline, true)
			if err != nil {
				return fmt.Errorf("index build: %w", err)
			}

			out.Successf("keyword index ready (%d terms)", indexes.Keyword.VocabularySize())
			out.Successf("semantic index ready (%d dims, %s)",
				indexes.Vector.Dimensions(), indexes.Vector.ModelName())
			return nil
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Discard cached artifacts and rebuild from scratch")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings (no model server required)")
	return cmd
}
