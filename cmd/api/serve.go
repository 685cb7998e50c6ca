package main

import (
	"github.com/spf13/cobra"

	"github.com/alumniconnect/platform/internal/pkg/logger"
	"github.com/alumniconnect/platform/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and the lifecycle scheduler.

Shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.NewServer(cmd.Context(), opts.configPath, Version)
			if err != nil {
				return err
			}
			if err := srv.Run(); err != nil {
				return err
			}
			logger.Info().Msg("Application finished gracefully.")
			return nil
		},
	}
}
