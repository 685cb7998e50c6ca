package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alumniconnect/platform/internal/seed"
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var seedOpts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create default categories and the super admin",
		Long: `Create the default forum categories and a SUPER_ADMIN account.

Admin credentials default to the ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME
environment variables. Existing records are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, closeStore, lgr, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeStore()
			return seed.CreateDefaultData(cmd.Context(), store, seedOpts, lgr)
		},
	}
	cmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", os.Getenv("ADMIN_EMAIL"), "super admin email")
	cmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "super admin password")
	cmd.Flags().StringVar(&seedOpts.AdminName, "admin-name", os.Getenv("ADMIN_NAME"), "super admin display name")
	return cmd
}
