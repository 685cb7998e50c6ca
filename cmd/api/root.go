package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/bootstrap"
	"github.com/alumniconnect/platform/internal/config"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "alumni",
		Short:         "Alumni platform API server",
		Long:          "Alumni platform API server: events, jobs, fundraising, forum and moderation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", bootstrap.DefaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newLifecycleCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		},
	}
}

// openStore loads configuration and opens the configured store for one-shot commands.
func openStore(ctx context.Context, opts *rootOptions) (*config.Config, repositories.Store, func(), zerolog.Logger, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath)
	if err != nil {
		return nil, nil, nil, lgr, err
	}
	store, closeStore, err := bootstrap.SetupStore(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, nil, lgr, err
	}
	return cfg, store, closeStore, lgr, nil
}
