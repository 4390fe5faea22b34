package model

// Tree is the arena that owns every Doc of one doc tree. DocID 0 is the
// RootDoc. A Tree is not safe for concurrent mutation.
type Tree struct {
	docs []*Doc
}

// NewTree returns a tree holding only its RootDoc.
func NewTree() *Tree {
	t := &Tree{}
	t.CreateDoc("", KindRoot, Options{})
	return t
}

// Root returns the RootDoc.
func (t *Tree) Root() *Doc {
	return t.docs[0]
}

// Get returns the doc with the given ID, or nil for an unknown ID.
func (t *Tree) Get(id DocID) *Doc {
	if id < 0 || int(id) >= len(t.docs) {
		return nil
	}
	return t.docs[id]
}

// Len returns the number of docs allocated in the arena, including
// detached ones.
func (t *Tree) Len() int {
	return len(t.docs)
}

// Parent returns the parent of d, or nil when d is detached or the root.
func (t *Tree) Parent(d *Doc) *Doc {
	return t.Get(d.Parent)
}

// Children returns the child docs of d in order.
func (t *Tree) Children(d *Doc) []*Doc {
	out := make([]*Doc, 0, len(d.Children))
	for _, id := range d.Children {
		out = append(out, t.docs[id])
	}
	return out
}

// Walk visits the tree-resident docs below the root in pre-order. The root
// itself is not visited. Returning false from fn skips the doc's subtree.
func (t *Tree) Walk(fn func(d *Doc, depth int) bool) {
	var visit func(id DocID, depth int)
	visit = func(id DocID, depth int) {
		d := t.docs[id]
		if !fn(d, depth) {
			return
		}
		for _, c := range d.Children {
			visit(c, depth+1)
		}
	}
	for _, c := range t.Root().Children {
		visit(c, 0)
	}
}

// Count returns the number of tree-resident docs below the root.
func (t *Tree) Count() int {
	n := 0
	t.Walk(func(*Doc, int) bool {
		n++
		return true
	})
	return n
}
