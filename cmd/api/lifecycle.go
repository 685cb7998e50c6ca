package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alumniconnect/platform/internal/app/services"
	"github.com/alumniconnect/platform/internal/bootstrap"
)

func newLifecycleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lifecycle",
		Short: "Run one lifecycle sweep and exit",
		Long: `Start due events, complete finished events and close campaigns past their
end date, once. The serve command runs the same sweep on a schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, closeStore, lgr, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := services.NewLifecycleService(store, bootstrap.ServiceConfig(cfg), lgr)
			res, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "events started: %d, events completed: %d, campaigns completed: %d\n",
				res.EventsStarted, res.EventsCompleted, res.CampaignsCompleted)
			return nil
		},
	}
}
