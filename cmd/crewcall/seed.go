package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crewcall/internal/adapters/storage"
	accountStore "crewcall/internal/adapters/storage/account"
	"crewcall/internal/application/orchestrators"
	"crewcall/internal/platform/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap admin account",
	Long:  "Creates an admin account from CREWCALL_ADMIN_EMAIL and CREWCALL_ADMIN_PASSWORD when the account table is empty. A populated table makes this a no-op.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			return errors.New("CREWCALL_ADMIN_EMAIL and CREWCALL_ADMIN_PASSWORD are required")
		}

		db, err := openDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		deps := orchestrators.SeedAdminDeps{
			AccountStore: accountStore.NewSQLiteStore(db),
			GenerateID:   newID,
			Now:          time.Now,
		}
		input := orchestrators.SeedAdminInput{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
		adminID, err := orchestrators.ExecuteSeedAdmin(cmd.Context(), input, deps)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if adminID == "" {
			fmt.Println("accounts already exist, nothing seeded")
			return nil
		}
		fmt.Printf("admin account %s created for %s\n", adminID, cfg.AdminEmail)
		return nil
	},
}
