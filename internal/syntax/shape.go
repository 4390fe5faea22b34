package syntax

import "strings"

// MemberKind classifies a class member.
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberGetter
	MemberSetter
	MemberConstructor
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberMethod:
		return "method"
	case MemberGetter:
		return "get"
	case MemberSetter:
		return "set"
	case MemberConstructor:
		return "constructor"
	}
	return "unknown"
}

// ValueKind classifies the right-hand side of a declaration.
type ValueKind uint8

const (
	ValueOther ValueKind = iota
	ValueFunction
	ValueClass
	ValueObject
)

// Shape is the documentable shape of a syntax node. The set of
// implementations is closed; consumers type-switch over it.
type Shape interface {
	shape()
}

// Assignment is "owner.property = value" in an expression statement.
type Assignment struct {
	Owner       string // "this" or the owner expression text
	OwnerIsThis bool
	Property    string
	Value       ValueKind
}

// ClassMember is a field, method, accessor or constructor of a class or
// object literal.
type ClassMember struct {
	Name   string
	Kind   MemberKind
	Static bool
	Access string
	Params []string
	Value  ValueKind
}

// ClassDecl is a class declaration or named class expression.
type ClassDecl struct {
	Name    string
	Extends []string
}

// FunctionDecl is a function declaration.
type FunctionDecl struct {
	Name   string
	Params []string
}

// VariableDecl is the first declarator of a var/let/const declaration.
type VariableDecl struct {
	Name   string
	Value  ValueKind
	Params []string

	// Local is set for declarations inside a function body. Function is
	// the name that function contributes to Enclosing, empty for methods,
	// arrow functions and other unnamed functions.
	Local    bool
	Function string
}

// ObjectMember is a "key: value" pair of an object literal.
type ObjectMember struct {
	Name   string
	Value  ValueKind
	Params []string
}

// Unknown is any node without a documentable shape, including the absent
// node of a floating comment.
type Unknown struct {
	Type string
}

func (Assignment) shape()   {}
func (ClassMember) shape()  {}
func (ClassDecl) shape()    {}
func (FunctionDecl) shape() {}
func (VariableDecl) shape() {}
func (ObjectMember) shape() {}
func (Unknown) shape()      {}

// Classify inspects n and returns its shape. Export statements are
// unwrapped to their declaration.
func Classify(n Node) Shape {
	n = unwrapExport(n)

	switch {
	case !n.Valid():
		return Unknown{}
	case n.IsExpressionStatement() && n.Expression().IsAssignmentExpression():
		return classifyAssignment(n.Expression())
	case n.IsClassProperty():
		return ClassMember{
			Name:   n.Name(),
			Kind:   MemberField,
			Static: n.IsStatic(),
			Access: n.Access(),
			Value:  valueKind(n.Field("value")),
		}
	case n.IsClassMethod():
		return ClassMember{
			Name:   n.Name(),
			Kind:   n.MethodKind(),
			Static: n.IsStatic(),
			Access: n.Access(),
			Params: params(n.Field("parameters")),
			Value:  ValueFunction,
		}
	}

	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		return ClassDecl{Name: n.Name(), Extends: heritage(n)}
	case "function_declaration", "generator_function_declaration":
		return FunctionDecl{Name: n.Name(), Params: params(n.Field("parameters"))}
	case "lexical_declaration", "variable_declaration":
		for _, d := range n.NamedChildren() {
			if d.Type() != "variable_declarator" {
				continue
			}
			value := d.Field("value")
			local, fn := functionScope(n)
			return VariableDecl{
				Name:     d.Name(),
				Value:    valueKind(value),
				Params:   params(value.Field("parameters")),
				Local:    local,
				Function: fn,
			}
		}
	case "pair":
		value := n.Field("value")
		return ObjectMember{
			Name:   n.Name(),
			Value:  valueKind(value),
			Params: params(value.Field("parameters")),
		}
	}
	return Unknown{Type: n.Type()}
}

func unwrapExport(n Node) Node {
	if n.Type() != "export_statement" {
		return n
	}
	if d := n.Field("declaration"); d.Valid() {
		return d
	}
	if v := n.Field("value"); v.Valid() {
		return v
	}
	return n
}

// functionScope reports whether n sits in the body of a function and the
// container name that function contributes, if any.
func functionScope(n Node) (bool, string) {
	for p := n.Parent(); p.Valid(); p = p.Parent() {
		switch p.Type() {
		case "program", "class_body":
			return false, ""
		case "function_declaration", "generator_function_declaration",
			"function", "function_expression", "generator_function",
			"arrow_function", "method_definition":
			return true, containerName(p)
		}
	}
	return false, ""
}

func classifyAssignment(expr Node) Shape {
	left := expr.Field("left")
	if !left.IsMemberExpression() {
		return Unknown{Type: expr.Type()}
	}
	object := left.Field("object")
	a := Assignment{
		Property: left.Field("property").Text(),
		Value:    valueKind(expr.Field("right")),
	}
	if object.IsThisExpression() {
		a.Owner = "this"
		a.OwnerIsThis = true
	} else {
		a.Owner = object.Text()
	}
	return a
}

func valueKind(n Node) ValueKind {
	switch n.Type() {
	case "function", "function_expression", "arrow_function", "generator_function":
		return ValueFunction
	case "class":
		return ValueClass
	case "object":
		return ValueObject
	}
	return ValueOther
}

// heritage returns the names in a class's extends clause.
func heritage(class Node) []string {
	for _, c := range class.NamedChildren() {
		if c.Type() != "class_heritage" {
			continue
		}
		var out []string
		for _, h := range c.NamedChildren() {
			switch h.Type() {
			case "extends_clause":
				if v := h.Field("value"); v.Valid() {
					out = append(out, v.Text())
				}
			case "implements_clause":
			default:
				out = append(out, h.Text())
			}
		}
		return out
	}
	return nil
}

// params returns the parameter names of a formal_parameters node.
func params(n Node) []string {
	if !n.Valid() {
		return nil
	}
	var out []string
	for _, p := range n.NamedChildren() {
		var name string
		switch p.Type() {
		case "identifier":
			name = p.Text()
		case "assignment_pattern":
			name = p.Field("left").Text()
		case "required_parameter", "optional_parameter":
			name = p.Field("pattern").Text()
		case "comment":
			continue
		default:
			name = p.Text()
		}
		out = append(out, strings.TrimPrefix(name, "..."))
	}
	return out
}
