package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jjenkins/visabulletin/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the bulletin tables and views",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.URL == "" {
			return errors.New("database url is required (--database-url or DATABASE_URL)")
		}

		db, err := store.NewDB(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signalContext(context.Background())
		defer cancel()

		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
