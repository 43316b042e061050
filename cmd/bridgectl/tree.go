package main

import (
	"github.com/slighter12/uiinspect-go/internal/output"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Fetch the visual or logical tree rooted at --root",
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().String("root", "", "handle of the subtree root; omit for the default root")
	treeCmd.Flags().Int("max-depth", 0, "maximum tree depth to return; 0 uses the endpoint default")
	treeCmd.Flags().Bool("logical", false, "fetch the logical tree instead of the visual tree")
}

func runTree(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	logical, _ := cmd.Flags().GetBool("logical")

	b, err := newBridge(cmd)
	if err != nil {
		return err
	}

	var tree any
	if logical {
		tree, err = b.GetLogicalTree(cmd.Context(), root, maxDepth)
	} else {
		tree, err = b.GetVisualTree(cmd.Context(), root, maxDepth)
	}
	if err != nil {
		return err
	}
	return output.Print(tree)
}
