package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/doctree"
	"github.com/jward/doctree/internal/config"
	"github.com/jward/doctree/internal/export"
)

var (
	flagConfig  string
	flagDB      string
	flagFormat  string
	flagVerbose bool
)

// cfg is the loaded config with flag overrides applied; set by
// PersistentPreRunE.
var cfg *config.Config

var logger = slog.Default()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "doctree",
	Short:         "Build documentation trees from JavaScript and TypeScript doc comments",
	Long:          "doctree parses sources with tree-sitter, assembles their doc comments into a documentation tree and stores each build in SQLite.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return loadConfig()
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: "+config.FileName+" at the repo root)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .doctree/docs.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: json|text|yaml (default: from config, else text)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildsCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(evalCmd)
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// loadConfig reads the config file and applies the persistent flag
// overrides. A missing default config file is not an error.
func loadConfig() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)

	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadOrDefault(filepath.Join(repoRoot, config.FileName))
	}
	if err != nil {
		return err
	}

	if flagFormat != "" {
		cfg.Output.Format = flagFormat
	}
	if err := export.ValidateFormat(cfg.Output.Format); err != nil {
		return err
	}
	cfg.Output.DB = resolveDBPath(repoRoot, cfg.Output.DB)
	logger.Debug("config loaded", "db", cfg.Output.DB, "format", cfg.Output.Format)
	return nil
}

// openEngine creates an Engine from the config plus extra options.
func openEngine(extra ...doctree.Option) (*doctree.Engine, error) {
	if cfg.Output.DB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.DB), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(cfg.Output.DB), err)
		}
	}
	opts := append(doctree.ConfigOptions(cfg), doctree.WithLogger(logger))
	opts = append(opts, extra...)
	e, err := doctree.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return e, nil
}

// openExisting is openEngine for commands that only read builds.
func openExisting(extra ...doctree.Option) (*doctree.Engine, error) {
	if _, err := os.Stat(cfg.Output.DB); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'doctree build' first)", cfg.Output.DB)
	}
	return openEngine(extra...)
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag, then the
// config value, then the default. Relative paths are taken from repoRoot.
func resolveDBPath(repoRoot, configured string) string {
	path := configured
	if flagDB != "" {
		path = flagDB
	}
	if path == "" {
		return filepath.Join(repoRoot, ".doctree", "docs.db")
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
