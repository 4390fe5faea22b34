package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/doctree"
)

var (
	flagFilter    string
	flagLanguages string
	flagSerial    bool
	flagNoSave    bool
	flagPrint     bool
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build the doc tree of a directory",
	Long:  "Parses JavaScript and TypeScript sources with tree-sitter, assembles their doc comments into a doc tree and saves it as a new build.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagFilter, "filter", "", "Risor expression; docs for which it is falsy are pruned")
	buildCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. javascript,tsx)")
	buildCmd.Flags().BoolVar(&flagSerial, "serial", false, "parse files one at a time")
	buildCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "do not write the build to the database")
	buildCmd.Flags().BoolVar(&flagPrint, "print", false, "write the doc tree to stdout")
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	if flagFilter != "" {
		cfg.Filter.Expr = flagFilter
	}
	if flagLanguages != "" {
		cfg.Input.Languages = splitList(flagLanguages)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if flagNoSave {
		// Build in memory only.
		cfg.Output.DB = ""
	}
	e, err := openEngine(doctree.WithParallel(!flagSerial))
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.BuildDirectory(context.Background(), targetDir)
	if err != nil {
		return fmt.Errorf("building: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if !flagNoSave {
		b, err := e.Save(res)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Build %s: %d docs from %d files, %d warnings\n",
			b.ID, b.DocCount, len(res.Files), b.WarningCount)
		fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Output.DB)
	}
	fmt.Fprintf(os.Stderr, "Built %s in %s\n", targetDir, time.Since(start).Round(time.Millisecond))

	if flagPrint {
		return e.Export(cmd.OutOrStdout(), res.Tree, cfg.Output.Format)
	}
	return nil
}

// resolveTargetDir returns the absolute path of the directory to build.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
