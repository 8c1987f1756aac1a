package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/deck"
	"github.com/deckforge/deckforge/internal/ui"
)

// newAudiencesCmd creates the audiences command.
func newAudiencesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "audiences",
		Short: "List available target audiences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			all := deck.Audiences()

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			out := ui.NewPrinter(cmd.OutOrStdout())
			for _, a := range all {
				out.Header(a.Key)
				out.KeyValue("Label", a.Label)
				out.KeyValue("Focus", a.Focus)
				out.KeyValue("Tone", a.Tone)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output audiences as JSON")

	return cmd
}
