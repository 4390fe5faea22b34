package docparse

import (
	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/syntax"
)

// ParseClassDoc documents class declarations, class expressions bound to a
// name and ES5 constructor functions tagged @class.
func ParseClassDoc(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool) {
	name := ""
	switch s := shape.(type) {
	case syntax.ClassDecl:
		name = s.Name
		if len(opts.Extends) == 0 {
			opts.Extends = s.Extends
		}
	case syntax.FunctionDecl:
		name = s.Name
		if len(opts.Params) == 0 {
			opts.Params = paramsFromNames(s.Params)
		}
	case syntax.VariableDecl:
		name = s.Name
	case syntax.Assignment:
		name, opts = privateName(s.Property, opts)
	}
	if opts.Name != "" {
		name = opts.Name
	}
	if name == "" {
		return nil, false
	}
	return t.CreateDoc(name, model.KindClass, opts), true
}

// ParseFunctionDoc documents free functions.
func ParseFunctionDoc(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool) {
	name, params := callable(shape)
	if opts.Name != "" {
		name = opts.Name
	}
	if name == "" {
		return nil, false
	}
	if len(opts.Params) == 0 {
		opts.Params = paramsFromNames(params)
	}
	return t.CreateDoc(name, model.KindFunction, opts), true
}

// ParseMethodDoc documents class methods, constructors and functions
// assigned onto an owner. Scope defaults the same way as for properties;
// assignments onto "Owner.prototype" are instance members.
func ParseMethodDoc(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool) {
	name, params := callable(shape)
	switch s := shape.(type) {
	case syntax.ClassMember:
		name, opts = memberName(s, opts)
		if opts.Scope == "" {
			if s.Static {
				opts.Scope = model.ScopeStatic
			} else {
				opts.Scope = model.ScopeInstance
			}
		}
	case syntax.Assignment:
		if opts.Scope == "" {
			opts.Scope = assignedScope(s)
		}
		name, opts = privateName(name, opts)
	case syntax.ObjectMember:
		if opts.Scope == "" {
			opts.Scope = model.ScopeStatic
		}
	}
	if opts.Name != "" {
		name = opts.Name
	}
	if name == "" {
		return nil, false
	}
	if len(opts.Params) == 0 {
		opts.Params = paramsFromNames(params)
	}
	return t.CreateDoc(name, model.KindMethod, opts), true
}

// ParseObjectDoc documents namespaces and object literals.
func ParseObjectDoc(t *model.Tree, shape syntax.Shape, opts model.Options) (*model.Doc, bool) {
	name := ""
	switch s := shape.(type) {
	case syntax.VariableDecl:
		name = s.Name
	case syntax.ObjectMember:
		name = s.Name
	case syntax.Assignment:
		name, opts = privateName(s.Property, opts)
	}
	if opts.Name != "" {
		name = opts.Name
	}
	if name == "" {
		return nil, false
	}
	return t.CreateDoc(name, model.KindObject, opts), true
}

// ParseTypedefDoc documents @typedef comments. The typedef is named by its
// tag; the node, if any, is ignored.
func ParseTypedefDoc(t *model.Tree, _ syntax.Shape, opts model.Options) (*model.Doc, bool) {
	if opts.Name == "" {
		return nil, false
	}
	if len(opts.DataType) == 0 {
		opts.DataType = []string{"any"}
	}
	return t.CreateDoc(opts.Name, model.KindTypedef, opts), true
}

// ParseEventDoc documents @event comments.
func ParseEventDoc(t *model.Tree, _ syntax.Shape, opts model.Options) (*model.Doc, bool) {
	if opts.Name == "" {
		return nil, false
	}
	return t.CreateDoc(opts.Name, model.KindEvent, opts), true
}

// callable returns the name and parameter names of a function-like shape.
func callable(shape syntax.Shape) (string, []string) {
	switch s := shape.(type) {
	case syntax.FunctionDecl:
		return s.Name, s.Params
	case syntax.VariableDecl:
		return s.Name, s.Params
	case syntax.ObjectMember:
		return s.Name, s.Params
	case syntax.ClassMember:
		return s.Name, s.Params
	case syntax.Assignment:
		return s.Property, nil
	}
	return "", nil
}
