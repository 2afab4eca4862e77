package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	corereconcile "beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileMode string
	reconcileUser uint
	reconcileJSON bool
	yesConfirm    bool
)

// reconcileCmd runs one reconciliation for a server.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <serverId>",
	Short: "Reconcile a server's stored components against its BMC",
	Long: `Fetch the live inventory of a server from its BMC and reconcile it with the
stored component inventory.

Modes:
  compare  read-only classification (default)
  force    mirror the BMC exactly, keeping manual components
  merge    apply safe updates, add new components, flag the rest for review

The per-server lock only covers this process. Do not run force or merge
against a server the API service is reconciling at the same time.

Examples:
  # Report only
  reconcile 42

  # Merge with interactive confirmation
  reconcile 42 --mode merge

  # Force with auto-confirm, stamping history with user 7
  reconcile 42 --mode force --yes --user 7`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileMode, "mode", string(corereconcile.ModeCompare), "Reconciliation mode (compare, force, merge)")
	reconcileCmd.Flags().UintVar(&reconcileUser, "user", 0, "User id recorded in component history")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the full report as JSON")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm mutating modes (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	serverID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || serverID == 0 {
		return fmt.Errorf("invalid server id: %q", args[0])
	}
	mode, err := corereconcile.ParseMode(reconcileMode)
	if err != nil {
		return err
	}

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	l := rt.logger
	defer l.Sync()

	engine, _, publisher, err := rt.engine(ctx, rt.storageClient())
	if err != nil {
		return fmt.Errorf("failed to build reconciliation engine: %w", err)
	}
	defer publisher.Close()

	var userID *uint
	if reconcileUser > 0 {
		userID = &reconcileUser
	}

	// Mutating modes are always previewed with a compare run first.
	if mode.Mutates() {
		l.Info("Planning reconciliation...", zap.Uint64("server_id", serverID))
		preview, err := engine.Reconcile(ctx, uint(serverID), corereconcile.ModeCompare, userID)
		if err != nil {
			return fmt.Errorf("failed to compare: %w", err)
		}
		printReport(l, preview)

		if !preview.Compare.HasDiscrepancies {
			l.Info("Inventory already matches the BMC. No changes required.")
			return nil
		}
		if !confirmDestructiveAction(mode) {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
	}

	report, err := engine.Reconcile(ctx, uint(serverID), mode, userID)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	printReport(l, report)

	if reconcileJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}

// printReport logs the counts of a report.
func printReport(l *zap.Logger, r *reconcile.Report) {
	switch {
	case r.Compare != nil:
		s := r.Compare.Summary
		l.Info("Comparison report",
			zap.String("run_id", r.Compare.RunID),
			zap.Int("in_db", s.Total.InDB),
			zap.Int("in_bmc", s.Total.InBMC),
			zap.Int("matched", s.Matched),
			zap.Int("missing_in_bmc", s.MissingInBMC),
			zap.Int("new_in_bmc", s.NewInBMC),
			zap.Int("mismatches", s.Mismatches),
		)

		for i, m := range r.Compare.Details.Mismatches {
			if i == 5 {
				l.Info("Additional mismatches not shown", zap.Int("count", len(r.Compare.Details.Mismatches)-i))
				break
			}
			l.Info("Mismatch",
				zap.Uint("component_id", m.DBComponent.ID),
				zap.String("name", m.DBComponent.Name),
				zap.Any("differences", m.Differences),
			)
		}
	case r.Force != nil:
		p := r.Force.Plan
		l.Info("Force report",
			zap.String("run_id", r.Force.RunID),
			zap.Int("inserted", p.Inserts),
			zap.Int("updated", p.Updates),
			zap.Int("deleted", p.Deletes),
			zap.Int("manual_preserved", r.Force.ManualPreserved),
			zap.Int("components", len(r.Force.Components)),
		)
	case r.Merge != nil:
		a := r.Merge.Actions
		l.Info("Merge report",
			zap.String("run_id", r.Merge.RunID),
			zap.Int("updated", len(a.Updated)),
			zap.Int("added", len(a.Added)),
			zap.Int("preserved", len(a.Preserved)),
			zap.Int("flagged_for_review", len(a.FlaggedForReview)),
		)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(mode corereconcile.Mode) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to apply the %s reconciliation: ", mode)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
