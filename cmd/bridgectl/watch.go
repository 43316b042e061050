package main

import (
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Subscribe to a property and report its current value",
	Long: "watch registers a subscription and reports the initial value. Because this bridge opens a " +
		"fresh connection per request, it disconnects immediately afterward; PropertyChanged " +
		"notifications for this subscription have no connection left to arrive on. Use the inspector " +
		"endpoint's own long-lived connection to actually stream changes.",
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("element", "", "handle of the element to watch")
	watchCmd.Flags().String("property", "", "name of the property to watch")
	watchCmd.MarkFlagRequired("element")
	watchCmd.MarkFlagRequired("property")
}

func runWatch(cmd *cobra.Command, args []string) error {
	element, _ := cmd.Flags().GetString("element")
	property, _ := cmd.Flags().GetString("property")

	b, err := newBridge(cmd)
	if err != nil {
		return err
	}

	result, err := b.WatchProperty(cmd.Context(), element, property)
	if err != nil {
		return err
	}
	return output.Print(result)
}
