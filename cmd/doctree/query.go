package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/doctree"
	"github.com/jward/doctree/internal/export"
)

var (
	flagBuild string
	flagDepth int
)

var queryCmd = &cobra.Command{
	Use:   "query [path]",
	Short: "Show a doc of a saved build",
	Long: `Looks up a doc by its path (e.g. "PIXI.Sprite#draw") in a saved build and
prints it with its subtree down to --depth levels. Without a path the
top-level docs are printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&flagBuild, "build", "", "build ID (default: latest)")
	queryCmd.Flags().IntVar(&flagDepth, "depth", 1, "levels of children to include; -1 for all")
}

func runQuery(cmd *cobra.Command, args []string) error {
	e, err := openExisting()
	if err != nil {
		return err
	}
	defer e.Close()

	_, tree, err := loadTree(e, flagBuild)
	if err != nil {
		return err
	}

	views := []export.DocView{}
	if len(args) == 0 || args[0] == "" {
		for _, c := range tree.Children(tree.Root()) {
			views = append(views, export.View(tree, c, flagDepth))
		}
	} else {
		d, ok := tree.Doc(args[0], tree.Root())
		if !ok {
			return fmt.Errorf("doc not found: %s", args[0])
		}
		views = []export.DocView{export.View(tree, d, flagDepth)}
	}
	return export.Write(cmd.OutOrStdout(), cfg.Output.Format, views)
}

// loadTree loads build id, or the latest build when id is empty.
func loadTree(e *doctree.Engine, id string) (*doctree.Build, *doctree.Tree, error) {
	b, tree, err := e.LoadBuild(id)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		if id == "" {
			return nil, nil, fmt.Errorf("no builds in %s (run 'doctree build' first)", cfg.Output.DB)
		}
		return nil, nil, fmt.Errorf("build not found: %s", id)
	}
	return b, tree, nil
}
