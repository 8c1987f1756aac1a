package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/deck"
	"github.com/deckforge/deckforge/internal/pipeline"
	"github.com/deckforge/deckforge/internal/ui"
)

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	var audienceKey string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate <repository-url>",
		Short: "Generate a pitch deck for a repository",
		Long: `Generate fetches the repository, indexes it, researches the market,
and writes a pitch deck (markdown + JSON) and a presenter script to the
output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Paths.OutputDir = outputDir
			}

			p, closer, err := pipeline.FromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			out := ui.NewPrinter(cmd.OutOrStdout())
			out.Stepf("generating pitch deck for %s (%s)", args[0], audienceKey)

			result, err := p.GeneratePitchDeck(cmd.Context(), args[0], audienceKey)
			if err != nil {
				out.Errorf("generation failed: %v", err)
				return err
			}

			out.Successf("pitch deck generated in %s", result.Duration.Round(time.Millisecond))
			out.Header(result.Deck.Title)
			out.KeyValue("Audience", result.Audience.Label)
			out.KeyValue("Sector", result.Sector.PrimarySector)
			out.KeyValue("Market size", result.Market.MarketSize.Value)
			out.KeyValue("Slides", fmt.Sprintf("%d", len(result.Deck.Slides)))
			out.KeyValue("Chunks", fmt.Sprintf("%d", result.IndexStats.Total()))
			out.KeyValue("Deck", result.Artifacts.MarkdownPath)
			out.KeyValue("Script", result.Artifacts.ScriptPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&audienceKey, "audience", deck.DefaultAudienceKey,
		"Target audience key (see 'deckforge audiences')")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for deck files")

	return cmd
}
