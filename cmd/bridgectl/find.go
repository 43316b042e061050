package main

import (
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search for elements by type name and/or element name",
	RunE:  runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().String("root", "", "handle to search under; omit for the default root")
	findCmd.Flags().String("type-name", "", "substring or exact type name to match")
	findCmd.Flags().String("name", "", "substring of the element's x:Name to match")
	findCmd.Flags().Int("max-results", 50, "cap on the number of matches returned")
}

func runFind(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	typeName, _ := cmd.Flags().GetString("type-name")
	name, _ := cmd.Flags().GetString("name")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	b, err := newBridge(cmd)
	if err != nil {
		return err
	}

	result, err := b.FindElements(cmd.Context(), root, typeName, name, maxResults)
	if err != nil {
		return err
	}
	return output.Print(result)
}
