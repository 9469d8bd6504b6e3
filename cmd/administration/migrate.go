package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symbiote-h2020/Administration-sub000/internal/config"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/db"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres schema",
	Long: `Apply the embedded SQL migrations to the database named by POSTGRES_DSN.
Every migration is idempotent, so running it twice is harmless. The embedded
bbolt store needs no migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log.Init(log.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})

		store, err := db.NewStore(cfg)
		if err != nil {
			return err
		}
		if !store.Enabled() {
			return errors.New("POSTGRES_DSN is required for migrate")
		}
		defer store.Close()

		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Migrations applied")
		return nil
	},
}
