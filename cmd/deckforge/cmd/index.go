package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/pipeline"
	"github.com/deckforge/deckforge/internal/ui"
)

// newIndexCmd creates the index command.
func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <repository-url>",
		Short: "Fetch and index a repository without generating a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p, closer, err := pipeline.FromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			out := ui.NewPrinter(cmd.OutOrStdout())
			out.Stepf("indexing %s", args[0])

			stats, err := p.IndexRepository(cmd.Context(), args[0])
			if err != nil {
				out.Errorf("indexing failed: %v", err)
				return err
			}

			out.Successf("indexed %s", args[0])
			out.KeyValue("Collection", stats.CollectionID)
			out.KeyValue("Doc chunks", fmt.Sprintf("%d", stats.DocChunks))
			out.KeyValue("Commit chunks", fmt.Sprintf("%d", stats.CommitChunks))
			return nil
		},
	}
}
