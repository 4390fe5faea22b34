// Package doctree builds a hierarchical documentation tree from the doc
// comments of JavaScript and TypeScript sources, built on tree-sitter.
//
// # Pipeline
//
// A build runs in two phases:
//
//  1. Parse: each selected file is parsed with tree-sitter. With
//     [WithParallel] (the default) files are parsed on a worker pool.
//
//  2. Assemble: files are visited in sorted path order. Every doc comment
//     is tokenized into tags, dispatched through the tag registry, matched
//     against the shape of the syntax node it documents, and placed into
//     the tree under its owner. Placement failures are reported as
//     [Warning] values, never as errors.
//
// # Usage
//
//	e, err := doctree.New(doctree.WithStore("docs.db"))
//	if err != nil { ... }
//	defer e.Close()
//
//	res, err := e.BuildDirectory(ctx, "path/to/project")
//	build, err := e.Save(res)
//	err = e.Export(os.Stdout, res.Tree, "json")
//
// # Filters
//
// [WithFilter] takes a Risor expression evaluated once per doc with the doc
// bound to the global "doc". Docs for which it is falsy are detached from
// the tree together with their subtree.
//
// # Persistence
//
// With [WithStore] every saved build is a snapshot in SQLite. Builds can be
// reloaded with [Engine.LoadBuild] and compared doc by doc through the
// store's signature hashes.
package doctree
