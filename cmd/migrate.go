package main

import (
	"context"

	"HospitalMS/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and the permission catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(context.Background())
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.db); err != nil {
				return err
			}
			if err := database.SeedCatalog(a.db, a.cfg.AdminEmail, a.cfg.AdminPassword, a.log); err != nil {
				return err
			}
			a.log.Info().Msg("migration complete")
			return nil
		},
	}
}
