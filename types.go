package doctree

import (
	"github.com/jward/doctree/internal/assemble"
	"github.com/jward/doctree/internal/export"
	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/store"
)

// Public type aliases for internal types used in the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type Build = store.Build
type BuildFile = store.BuildFile
type DocChange = store.DocChange
type Tree = model.Tree
type Doc = model.Doc
type Kind = model.Kind
type Warning = assemble.Warning
type DocView = export.DocView

// Result is the outcome of one build.
type Result struct {
	// Root is the directory paths are relative to; empty for BuildSource.
	Root     string
	Tree     *Tree
	Files    []*BuildFile
	Warnings []Warning
	// Pruned counts docs detached by the filter, subtrees not included.
	Pruned int
}
