package main

import (
	"time"

	"github.com/jward/doctree"
)

// CLIBuild is a JSON-friendly build representation.
type CLIBuild struct {
	ID           string `json:"id" yaml:"id"`
	CreatedAt    string `json:"created_at" yaml:"created_at"`
	Root         string `json:"root" yaml:"root"`
	DocCount     int    `json:"doc_count" yaml:"doc_count"`
	WarningCount int    `json:"warning_count" yaml:"warning_count"`
}

// CLIChange is a JSON-friendly doc change between two builds.
type CLIChange struct {
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"kind" yaml:"kind"`
	Change string `json:"change" yaml:"change"`
}

func toCLIBuild(b *doctree.Build) CLIBuild {
	return CLIBuild{
		ID:           b.ID,
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
		Root:         b.Root,
		DocCount:     b.DocCount,
		WarningCount: b.WarningCount,
	}
}
