package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alumniconnect/platform/internal/app/migrations"
	"github.com/alumniconnect/platform/internal/bootstrap"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath)
			if err != nil {
				return err
			}
			return migrations.Up(cfg.GetPostgresConnectionString(), lgr)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath)
			if err != nil {
				return err
			}
			return migrations.Down(cfg.GetPostgresConnectionString(), steps, lgr)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
