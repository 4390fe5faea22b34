package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// formatBuildsText formats CLIBuild results as aligned columns.
func formatBuildsText(w io.Writer, builds []CLIBuild) {
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tDOCS\tWARNINGS\tROOT")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			b.ID, b.CreatedAt, b.DocCount, b.WarningCount, b.Root)
	}
	tw.Flush()
}

// formatChangesText formats CLIChange results as "+ path (kind)" lines.
func formatChangesText(w io.Writer, changes []CLIChange) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "No changes.")
		return
	}
	for _, c := range changes {
		fmt.Fprintf(w, "%s %s (%s)\n", changeMarker(c.Change), c.Path, c.Kind)
	}
}

func changeMarker(change string) string {
	switch change {
	case "added":
		return "+"
	case "removed":
		return "-"
	default:
		return "~"
	}
}

// outputResult writes v in the configured format. Text output dispatches
// on the result type.
func outputResult(w io.Writer, v any) error {
	switch cfg.Output.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	switch r := v.(type) {
	case []CLIBuild:
		formatBuildsText(w, r)
	case []CLIChange:
		formatChangesText(w, r)
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}
