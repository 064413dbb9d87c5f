package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crewcall/internal/adapters/storage"
	"crewcall/internal/platform/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := openDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		fmt.Printf("database %s at schema version %d\n", cfg.DBPath, storage.LatestSchemaVersion())
		return nil
	},
}
