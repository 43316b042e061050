package main

import (
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Draw (or clear) a highlight overlay around an element",
	RunE:  runHighlight,
}

func init() {
	rootCmd.AddCommand(highlightCmd)
	highlightCmd.Flags().String("element", "", "handle of the element to highlight; omit to clear")
}

type highlightResult struct {
	ElementHandle string `yaml:"elementHandle,omitempty" json:"elementHandle,omitempty"`
	Cleared       bool   `yaml:"cleared" json:"cleared"`
}

func runHighlight(cmd *cobra.Command, args []string) error {
	element, _ := cmd.Flags().GetString("element")

	b, err := newBridge(cmd)
	if err != nil {
		return err
	}
	if err := b.HighlightElement(cmd.Context(), element); err != nil {
		return err
	}
	return output.Print(highlightResult{ElementHandle: element, Cleared: element == ""})
}
