package main

import (
	"errors"
	"fmt"

	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(loadConfig func() *config.Config, newLogger func() *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := loadConfig()
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is not set")
			}

			db, err := storage.ConnectDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := storage.RunMigrations(ctx, db)
			if err != nil {
				return err
			}
			newLogger().Info(ctx, "Migrations complete", "applied", applied)

			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
}
