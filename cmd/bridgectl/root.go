// Command bridgectl attaches to a target process's inspector endpoint
// and issues one inspection request at a time.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/slighter12/uiinspect-go/bridge"
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bridgectl",
	Short: "Inspect a running application's UI object graph",
	Long:  "bridgectl attaches to a target process's inspector endpoint and issues one inspection request at a time.",
}

var (
	flagPrefix           string
	flagConnectTimeout   time.Duration
	flagRequestTimeout   time.Duration
	flagPID              int
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPrefix, "prefix", "wpf_inspector_", "rendezvous address prefix shared with the target process")
	rootCmd.PersistentFlags().DurationVar(&flagConnectTimeout, "connect-timeout", bridge.DefaultConnectionTimeout, "timeout for opening a connection to the inspector endpoint")
	rootCmd.PersistentFlags().DurationVar(&flagRequestTimeout, "request-timeout", bridge.DefaultRequestTimeout, "timeout for one request/response round trip")
	rootCmd.PersistentFlags().IntVar(&flagPID, "pid", 0, "target process id")
	rootCmd.PersistentFlags().String("output", "yaml", "output format: yaml or json")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		switch format {
		case "yaml":
			output.Current = output.FormatYAML
		case "json":
			output.Current = output.FormatJSON
		default:
			return fmt.Errorf("unsupported output format: %s (use yaml or json)", format)
		}
		return nil
	}
}

// newBridge builds a Bridge attached to --pid using the shared root
// flags, failing the command early if --pid was not given.
func newBridge(cmd *cobra.Command) (*bridge.Bridge, error) {
	if flagPID == 0 {
		return nil, fmt.Errorf("--pid is required")
	}
	b := bridge.New(flagPrefix, flagConnectTimeout, flagRequestTimeout, nil, nil)
	if err := b.Attach(cmd.Context(), flagPID, ""); err != nil {
		return nil, err
	}
	return b, nil
}
