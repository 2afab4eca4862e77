package cmd

import (
	"context"
	"fmt"

	"beryll-inventory/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd checks the inventory schema and the snapshot bucket.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the inventory schema and snapshot storage",
	Long:  `Verifies that the inventory tables match the models and that the BMC snapshot bucket exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		logg := rt.logger
		defer logg.Sync()

		svc := integrity.NewService(rt.storageClient(), rt.cfg.Storage, logg, rt.db)

		logg.Info("Checking inventory schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Inventory schema matches the models.")
		} else {
			for table, tbl := range report.Tables {
				if tbl.Status == "ok" {
					continue
				}
				logg.Warn("Schema drift",
					zap.String("table", table),
					zap.String("status", tbl.Status),
					zap.Strings("missing_columns", tbl.MissingColumns),
					zap.Strings("type_mismatches", tbl.TypeMismatches),
				)
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
			logg.Info("Run migrate to create missing tables and columns.")
		}

		logg.Info("Checking snapshot storage...", zap.String("bucket", rt.cfg.Storage.Bucket))
		st, err := svc.CheckStorage(ctx)
		if err == nil && !st.Exists && fixFlag {
			st, err = svc.FixStorage(ctx)
		}
		switch {
		case err != nil:
			logg.Error("Storage check failed", zap.Error(err))
		case !st.Exists:
			logg.Warn("Snapshot bucket is missing. Run with --fix to create it.")
		default:
			logg.Info("Snapshot bucket present",
				zap.Int("snapshots", st.Snapshots),
				zap.Bool("created", st.Created),
			)
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the snapshot bucket when missing")
	RootCmd.AddCommand(integrityCmd)
}
