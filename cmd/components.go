package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"beryll-inventory/core/utils"
	"beryll-inventory/feature/components"
	"beryll-inventory/feature/components/store"

	"github.com/spf13/cobra"
)

// componentsCmd prints the stored inventory of one server.
var componentsCmd = &cobra.Command{
	Use:   "components <serverId>",
	Short: "Show the stored component inventory of a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		serverID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || serverID == 0 {
			return fmt.Errorf("invalid server id: %q", args[0])
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		engine, bmcClient, publisher, err := rt.engine(ctx, nil)
		if err != nil {
			return err
		}
		defer publisher.Close()

		svc := components.NewService(store.New(rt.db), engine, bmcClient, publisher, rt.logger)
		resp, err := svc.List(ctx, uint(serverID))
		if err != nil {
			return err
		}

		srv := resp.Server
		fmt.Printf("\n=== Server %d ===\n", srv.ID)
		fmt.Printf("Hostname: %s\n", deref(srv.Hostname))
		fmt.Printf("BMC: %s\n", utils.FirstNonEmpty(deref(srv.BMCAddress), deref(srv.IPAddress)))
		if srv.LastComponentsFetchAt != nil {
			fmt.Printf("Last BMC fetch: %s\n", srv.LastComponentsFetchAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("Components: %d (flagged: %d)\n\n", resp.Total, resp.DiscrepancyCount)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tSLOT\tNAME\tSERIAL\tFIRMWARE\tSTATUS\tORIGIN\tFLAG")
		for _, c := range resp.Components {
			flag := ""
			if c.BMCDiscrepancy && c.BMCDiscrepancyReason != nil {
				flag = string(*c.BMCDiscrepancyReason)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				c.ID, c.ComponentType, deref(c.Slot), c.Name,
				utils.FirstNonEmpty(deref(c.SerialNumber), deref(c.SerialNumberYadro)),
				deref(c.FirmwareVersion), c.Status, c.OriginSource, flag)
		}
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(componentsCmd)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
