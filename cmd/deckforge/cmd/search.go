package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/chunk"
	"github.com/deckforge/deckforge/internal/pipeline"
	"github.com/deckforge/deckforge/internal/ui"
)

// newSearchCmd creates the search command.
func newSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <repository-url> <query>",
		Short: "Search an indexed repository",
		Args:  cobra.MinimumNArgs(2),
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

			query := strings.Join(args[1:], " ")
			results, err := p.Search(cmd.Context(), args[0], query, topK)
			if err != nil {
				return err
			}

			out := ui.NewPrinter(cmd.OutOrStdout())
			if len(results) == 0 {
				out.Warnf("no results for %q", query)
				return nil
			}

			for i, r := range results {
				source := r.Chunk.Meta.Path
				if r.Chunk.Meta.Type == chunk.TypeCommit {
					source = shortSHA(r.Chunk.Meta.SHA)
				}
				out.Header(fmt.Sprintf("%d. %s (score %.3f)", i+1, source, r.Score))
				fmt.Fprintln(cmd.OutOrStdout(), snippet(r.Chunk.Text, 200))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Number of results")

	return cmd
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}
