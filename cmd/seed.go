package main

import (
	"context"
	"math/rand"
	"time"

	"HospitalMS/database"
	"HospitalMS/seed"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Generate demo data for Iraqi hospitals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := bootstrap(ctx)
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

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			summary, err := seed.New(a.services(nil), rng, seed.DefaultOptions(), a.log).Run(ctx)
			if err != nil {
				a.log.Error().Err(err).Interface("partial", summary).Msg("seed failed")
				return err
			}
			a.log.Info().Interface("summary", summary).Msg("seed complete")
			return nil
		},
	}
}
