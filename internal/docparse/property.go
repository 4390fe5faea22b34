package docparse

import (
	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/syntax"
)

// parseAssignedPropertyDoc handles "this.member = value",
// "Object.prototype.member = value" and "Object.member = value".
func parseAssignedPropertyDoc(t *model.Tree, s syntax.Assignment, opts model.Options) *model.Doc {
	opts.Object = s.Owner
	if opts.Scope == "" {
		opts.Scope = assignedScope(s)
	}
	name, opts := privateName(s.Property, opts)
	return t.CreateDoc(name, model.KindProperty, opts)
}

// parseClassPropertyDoc handles class fields and accessors.
func parseClassPropertyDoc(t *model.Tree, s syntax.ClassMember, opts model.Options) *model.Doc {
	if opts.Scope == "" {
		if s.Static {
			opts.Scope = model.ScopeStatic
		} else {
			opts.Scope = model.ScopeInstance
		}
	}
	name, opts := memberName(s, opts)
	return t.CreateDoc(name, model.KindProperty, opts)
}

// ParsePropertyDoc builds a PropertyDoc for an assignment, a class field or
// a getter/setter. For any other shape a doc is produced only when a tag
// already named it. Returns false when nothing is documentable.
func ParsePropertyDoc(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool) {
	if len(opts.DataType) == 0 {
		opts.DataType = []string{"any"}
	}

	switch s := shape.(type) {
	case syntax.Assignment:
		return parseAssignedPropertyDoc(t, s, opts), true
	case syntax.ClassMember:
		switch s.Kind {
		case syntax.MemberField, syntax.MemberGetter, syntax.MemberSetter:
			return parseClassPropertyDoc(t, s, opts), true
		case syntax.MemberMethod, syntax.MemberConstructor:
		}
	}

	if opts.Name != "" {
		return t.CreateDoc(opts.Name, model.KindProperty, opts), true
	}
	return nil, false
}
