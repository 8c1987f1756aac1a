package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/pipeline"
	"github.com/deckforge/deckforge/internal/server"
	"github.com/deckforge/deckforge/internal/ui"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pitch-deck HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			p, closer, err := pipeline.FromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			ui.NewPrinter(cmd.OutOrStdout()).Stepf("serving on http://%s", addr)

			srv := server.New(p, p.ResultCache(), cfg.Paths.OutputDir)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")

	return cmd
}
