package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "List saved builds, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBuilds,
}

var diffCmd = &cobra.Command{
	Use:   "diff [old-build new-build]",
	Short: "Compare the docs of two builds",
	Long: `Lists docs added, removed or changed between two builds. A doc is changed
when its signature (kind, visibility, version, scope, types, params, returns,
extends) differs. Without arguments the two newest builds are compared.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts 0 or 2 build IDs, received %d", len(args))
		}
		return nil
	},
	RunE: runDiff,
}

func runBuilds(cmd *cobra.Command, args []string) error {
	e, err := openExisting()
	if err != nil {
		return err
	}
	defer e.Close()

	builds, err := e.Store().Builds()
	if err != nil {
		return err
	}
	out := make([]CLIBuild, 0, len(builds))
	for _, b := range builds {
		out = append(out, toCLIBuild(b))
	}
	return outputResult(cmd.OutOrStdout(), out)
}

func runDiff(cmd *cobra.Command, args []string) error {
	e, err := openExisting()
	if err != nil {
		return err
	}
	defer e.Close()

	var oldID, newID string
	if len(args) == 2 {
		oldID, newID = args[0], args[1]
	} else {
		builds, err := e.Store().Builds()
		if err != nil {
			return err
		}
		if len(builds) < 2 {
			return fmt.Errorf("diff needs two builds, found %d", len(builds))
		}
		oldID, newID = builds[1].ID, builds[0].ID
	}
	for _, id := range []string{oldID, newID} {
		b, err := e.Store().BuildByID(id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("build not found: %s", id)
		}
	}

	changes, err := e.Store().DiffBuilds(oldID, newID)
	if err != nil {
		return err
	}
	out := make([]CLIChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, CLIChange{Path: c.Path, Kind: c.Kind, Change: string(c.Change)})
	}
	return outputResult(cmd.OutOrStdout(), out)
}
