package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/doctree"
)

var flagExpr string

var evalCmd = &cobra.Command{
	Use:   "eval [script.risor]",
	Short: "Run a Risor script against the build database",
	Long: `Runs a Risor script, or the expression given with -e, with the build query
functions available as globals: builds, latest_build, doc_by_path,
doc_children, docs_by_kind, diff_builds and db_query. Scripts may import
other scripts from their own directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&flagExpr, "expr", "e", "", "expression to evaluate; its value is printed")
}

func runEval(cmd *cobra.Command, args []string) error {
	if (flagExpr == "") == (len(args) == 0) {
		return fmt.Errorf("give either a script path or -e expression")
	}

	var opts []doctree.Option
	if len(args) == 1 {
		opts = append(opts, doctree.WithScriptsDir(filepath.Dir(args[0])))
	}
	e, err := openExisting(opts...)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	if flagExpr != "" {
		result, err := e.Runtime().Eval(ctx, flagExpr, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Inspect())
		return nil
	}
	return e.Runtime().RunScript(ctx, filepath.Base(args[0]), nil)
}
