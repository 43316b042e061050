package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/slighter12/uiinspect-go/bridge"
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Probe candidate process IDs for a responding inspector endpoint",
	Long: "Process discovery itself is outside this protocol's scope; discover takes the candidate " +
		"PIDs to probe directly via --pids rather than enumerating the OS process table.",
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().String("pids", "", "comma-separated candidate PIDs to probe, e.g. 1234,5678")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	pidsFlag, _ := cmd.Flags().GetString("pids")
	if pidsFlag == "" {
		return fmt.Errorf("--pids is required")
	}

	var candidates []bridge.ProcessInfo
	for _, part := range strings.Split(pidsFlag, ",") {
		pid, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid pid %q: %w", part, err)
		}
		candidates = append(candidates, bridge.ProcessInfo{PID: pid})
	}

	lister := func(context.Context) ([]bridge.ProcessInfo, error) { return candidates, nil }
	d := bridge.NewDiscovery(lister, flagPrefix, flagConnectTimeout)
	if err := d.Refresh(cmd.Context()); err != nil {
		return err
	}
	return output.Print(d.Candidates())
}
