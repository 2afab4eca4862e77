package cmd

import (
	"fmt"

	"beryll-inventory/feature/components/store"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the inventory tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the inventory tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		if err := store.Migrate(rt.db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		rt.logger.Info("Schema migrated")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
