package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neontix/internal/shared/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)

			pg, err := database.OpenPostgreSQL(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := pg.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := database.Migrate(pg); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}
