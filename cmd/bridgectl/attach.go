package main

import (
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Verify that --pid is a live process with a reachable inspector endpoint",
	RunE:  runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

type attachResult struct {
	PID     int  `yaml:"pid" json:"pid"`
	Attached bool `yaml:"attached" json:"attached"`
}

func runAttach(cmd *cobra.Command, args []string) error {
	b, err := newBridge(cmd)
	if err != nil {
		return err
	}
	if _, err := b.GetVisualTree(cmd.Context(), "", 1); err != nil {
		return err
	}
	return output.Print(attachResult{PID: flagPID, Attached: true})
}
