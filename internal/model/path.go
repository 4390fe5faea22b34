package model

import (
	"slices"
	"strings"
)

// SplitPath splits a dotted-or-hashed path into its segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '#'
	})
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// ChildDoc returns the first child of scope named name.
func (t *Tree) ChildDoc(name string, scope *Doc) (*Doc, bool) {
	for _, id := range scope.Children {
		if c := t.docs[id]; c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddChildDoc makes doc a child of scope. The doc is first detached from
// its current parent; a same-named child of scope is then overwritten in
// place, otherwise doc is appended. Stack and path of doc and its whole
// subtree are recomputed. The overwritten child, if any, is left detached.
//
// Returns false without changing anything when scope is doc itself or one
// of its descendants.
func (t *Tree) AddChildDoc(doc, scope *Doc) (*Doc, bool) {
	if t.isWithin(scope, doc) {
		return nil, false
	}

	t.detach(doc)

	replaced := false
	for i, id := range scope.Children {
		old := t.docs[id]
		if old.Name == doc.Name {
			scope.Children[i] = doc.ID
			old.Parent = NoDoc
			replaced = true
			break
		}
	}
	if !replaced {
		scope.Children = append(scope.Children, doc.ID)
	}

	doc.Parent = scope.ID
	t.relink(doc)
	return doc, true
}

// Doc resolves path relative to from. Every segment must match; a single
// missing segment fails the whole lookup. An empty path resolves to from.
func (t *Tree) Doc(path string, from *Doc) (*Doc, bool) {
	return t.DocByStack(SplitPath(path), from)
}

// DocByStack is Doc for an already split path.
func (t *Tree) DocByStack(stack []string, from *Doc) (*Doc, bool) {
	scope := from
	for _, name := range stack {
		child, ok := t.ChildDoc(name, scope)
		if !ok {
			return nil, false
		}
		scope = child
	}
	return scope, true
}

// AddDoc inserts doc below root at the location named by its stack, or by
// its path when the stack is empty. Every ancestor segment must already
// exist; intermediate docs are never created. On failure doc is left as it
// was.
func (t *Tree) AddDoc(doc, root *Doc) (*Doc, bool) {
	stack := doc.Stack
	if len(stack) == 0 {
		stack = SplitPath(doc.Path)
	}
	if len(stack) == 0 {
		stack = []string{doc.Name}
	}

	scope := root
	for _, name := range stack[:len(stack)-1] {
		child, ok := t.ChildDoc(name, scope)
		if !ok {
			return nil, false
		}
		scope = child
	}
	return t.AddChildDoc(doc, scope)
}

// DetachDoc removes doc from its parent. The doc keeps its subtree and can
// be attached again with AddChildDoc or AddDoc.
func (t *Tree) DetachDoc(doc *Doc) {
	t.detach(doc)
}

func (t *Tree) detach(doc *Doc) {
	parent := t.Get(doc.Parent)
	if parent == nil {
		return
	}
	if i := slices.Index(parent.Children, doc.ID); i >= 0 {
		parent.Children = slices.Delete(parent.Children, i, i+1)
	}
	doc.Parent = NoDoc
}

// isWithin reports whether d is anc or one of anc's descendants.
func (t *Tree) isWithin(d, anc *Doc) bool {
	for cur := d; cur != nil; cur = t.Get(cur.Parent) {
		if cur.ID == anc.ID {
			return true
		}
	}
	return false
}

func (t *Tree) relink(doc *Doc) {
	parent := t.docs[doc.Parent]
	doc.Stack = append(slices.Clone(parent.Stack), doc.Name)
	doc.Path = joinPath(parent.Path, doc.Name)
	for _, id := range doc.Children {
		t.relink(t.docs[id])
	}
}
