package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jward/doctree/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a saved build over HTTP",
	Long:  "Loads a saved build and serves its docs as JSON until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default: from config, else localhost:8080)")
	serveCmd.Flags().StringVar(&flagBuild, "build", "", "build ID (default: latest)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e, err := openExisting()
	if err != nil {
		return err
	}
	defer e.Close()

	b, tree, err := loadTree(e, flagBuild)
	if err != nil {
		return err
	}
	logger.Info("loaded build", "build", b.ID, "docs", b.DocCount)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(tree, server.WithBuilds(e.Store()), server.WithLogger(logger))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
