// Package docparse turns a syntax node shape plus tag-derived options into
// a detached Doc of the right kind.
//
// Every parser has the same contract: it returns the new doc and true, or
// (nil, false) when the shape carries nothing documentable for that kind.
// Parsers never touch the tree structure; placement is the caller's job.
package docparse

import (
	"strings"

	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/syntax"
)

// Parser is the signature shared by the per-kind parsers.
type Parser func(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool)

var parsers = map[model.Kind]Parser{
	model.KindClass:    ParseClassDoc,
	model.KindFunction: ParseFunctionDoc,
	model.KindMethod:   ParseMethodDoc,
	model.KindObject:   ParseObjectDoc,
	model.KindProperty: ParsePropertyDoc,
	model.KindTypedef:  ParseTypedefDoc,
	model.KindEvent:    ParseEventDoc,
}

// Parse picks the parser for the kind selected by tags, or inferred from
// the shape when no tag selected one, and runs it.
func Parse(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool) {
	if v, ok := shape.(syntax.VariableDecl); ok && v.Local {
		// A local of a method or unnamed function has no owner; without
		// an explicit name or @memberof it would land on the enclosing
		// class and replace its members.
		if v.Function == "" && opts.Name == "" && opts.MemberOf == "" {
			return nil, false
		}
		if opts.Scope == "" {
			opts.Scope = model.ScopeInner
		}
	}
	kind := opts.Kind
	if kind == model.KindNone {
		kind = InferKind(shape)
	}
	p, ok := parsers[kind]
	if !ok {
		return nil, false
	}
	if kind == model.KindProperty && opts.Name == "" {
		// Declarations are not property shapes; their name is passed the
		// way an explicit tag would pass it.
		switch s := shape.(type) {
		case syntax.VariableDecl:
			opts.Name = s.Name
		case syntax.ObjectMember:
			opts.Name = s.Name
		}
	}
	return p(t, shape, opts)
}

// InferKind returns the doc kind a shape documents when no tag says
// otherwise. Returns KindNone for shapes that document nothing.
func InferKind(shape syntax.Shape) model.Kind {
	switch s := shape.(type) {
	case syntax.ClassDecl:
		return model.KindClass
	case syntax.FunctionDecl:
		return model.KindFunction
	case syntax.ClassMember:
		switch s.Kind {
		case syntax.MemberMethod, syntax.MemberConstructor:
			return model.KindMethod
		case syntax.MemberGetter, syntax.MemberSetter:
			return model.KindProperty
		case syntax.MemberField:
			if s.Value == syntax.ValueFunction {
				return model.KindMethod
			}
			return model.KindProperty
		}
	case syntax.Assignment:
		return valueKind(s.Value, model.KindMethod, model.KindProperty)
	case syntax.VariableDecl:
		return valueKind(s.Value, model.KindFunction, model.KindProperty)
	case syntax.ObjectMember:
		return valueKind(s.Value, model.KindMethod, model.KindProperty)
	case syntax.Unknown:
	}
	return model.KindNone
}

func valueKind(v syntax.ValueKind, function, other model.Kind) model.Kind {
	switch v {
	case syntax.ValueFunction:
		return function
	case syntax.ValueClass:
		return model.KindClass
	case syntax.ValueObject:
		return model.KindObject
	case syntax.ValueOther:
	}
	return other
}

// memberName returns the member's name and options with the visibility
// defaulted from TypeScript modifiers or a "#private" name when no access
// tag set it.
func memberName(s syntax.ClassMember, opts model.Options) (string, model.Options) {
	if opts.Visibility == "" && s.Access != "" {
		opts.Visibility = model.Visibility(s.Access)
	}
	return privateName(s.Name, opts)
}

// privateName drops the "#" of a private name, since "#" separates path
// segments, and defaults the visibility to private.
func privateName(name string, opts model.Options) (string, model.Options) {
	if !strings.HasPrefix(name, "#") {
		return name, opts
	}
	if opts.Visibility == "" {
		opts.Visibility = model.VisibilityPrivate
	}
	return strings.TrimPrefix(name, "#"), opts
}

// assignedScope is the default scope of a member assigned onto an owner:
// "this" and "Owner.prototype" give instance members, anything else static.
func assignedScope(s syntax.Assignment) model.Scope {
	if s.OwnerIsThis || s.Owner == "prototype" || strings.HasSuffix(s.Owner, ".prototype") {
		return model.ScopeInstance
	}
	return model.ScopeStatic
}

// paramsFromNames turns parameter names into undocumented params.
func paramsFromNames(names []string) []model.Param {
	if len(names) == 0 {
		return nil
	}
	out := make([]model.Param, len(names))
	for i, n := range names {
		out[i] = model.Param{Name: n}
	}
	return out
}
