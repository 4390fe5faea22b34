// Package syntax parses JavaScript and TypeScript with tree-sitter and
// exposes the small set of node capabilities the doc-tree builder needs.
package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// File is one parsed source file.
type File struct {
	Path     string
	Language string

	tree *sitter.Tree
	src  []byte
}

// Parse parses src as the given language.
func Parse(ctx context.Context, path string, src []byte, lang string) (*File, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("syntax: unsupported language %q", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse %s: %w", path, err)
	}
	return &File{Path: path, Language: lang, tree: tree, src: src}, nil
}

// Root returns the root node of the file.
func (f *File) Root() Node {
	return Node{n: f.tree.RootNode(), f: f}
}

// Close releases the tree-sitter tree. Nodes of the file must not be used
// afterwards.
func (f *File) Close() {
	f.tree.Close()
}

// Node is a syntax node of a File. The zero Node is invalid and every
// predicate on it reports false.
type Node struct {
	n *sitter.Node
	f *File
}

func (n Node) wrap(c *sitter.Node) Node {
	if c == nil || c.IsNull() {
		return Node{}
	}
	return Node{n: c, f: n.f}
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool {
	return n.n != nil
}

// Type returns the tree-sitter node type, or "" for an invalid node.
func (n Node) Type() string {
	if n.n == nil {
		return ""
	}
	return n.n.Type()
}

// Text returns the source text of the node.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return n.n.Content(n.f.src)
}

// Line returns the 1-based start line.
func (n Node) Line() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.StartPoint().Row) + 1
}

// Field returns the child stored under a grammar field name.
func (n Node) Field(name string) Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.ChildByFieldName(name))
}

// Parent returns the parent node.
func (n Node) Parent() Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.Parent())
}

// NamedChildren returns the named children in order.
func (n Node) NamedChildren() []Node {
	if n.n == nil {
		return nil
	}
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := range count {
		out = append(out, n.wrap(n.n.NamedChild(i)))
	}
	return out
}

// hasToken reports whether n has an anonymous child token of one of the
// given types, such as "static" or "get".
func (n Node) hasToken(types ...string) bool {
	if n.n == nil {
		return false
	}
	for i := range int(n.n.ChildCount()) {
		c := n.n.Child(i)
		if c == nil || c.IsNamed() {
			continue
		}
		for _, t := range types {
			if c.Type() == t {
				return true
			}
		}
	}
	return false
}

// NextNamedSibling returns the next named sibling.
func (n Node) NextNamedSibling() Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.NextNamedSibling())
}

// IsExpressionStatement reports whether n is an expression statement.
func (n Node) IsExpressionStatement() bool {
	return n.Type() == "expression_statement"
}

// Expression returns the expression of an expression statement.
func (n Node) Expression() Node {
	if !n.IsExpressionStatement() {
		return Node{}
	}
	if children := n.NamedChildren(); len(children) > 0 {
		return children[0]
	}
	return Node{}
}

// IsAssignmentExpression reports whether n is an assignment "a = b".
func (n Node) IsAssignmentExpression() bool {
	return n.Type() == "assignment_expression"
}

// IsThisExpression reports whether n is the "this" keyword.
func (n Node) IsThisExpression() bool {
	return n.Type() == "this"
}

// IsMemberExpression reports whether n is "object.property".
func (n Node) IsMemberExpression() bool {
	return n.Type() == "member_expression"
}

// IsClassProperty reports whether n is a class field declaration.
func (n Node) IsClassProperty() bool {
	switch n.Type() {
	case "field_definition", "public_field_definition":
		return true
	}
	return false
}

// IsClassMethod reports whether n is a method definition, including
// accessors and constructors.
func (n Node) IsClassMethod() bool {
	return n.Type() == "method_definition"
}

// IsStatic reports whether a class member is marked static.
func (n Node) IsStatic() bool {
	return n.hasToken("static", "static get")
}

// MethodKind classifies a method definition.
func (n Node) MethodKind() MemberKind {
	switch {
	case !n.IsClassMethod():
		return MemberField
	case n.hasToken("get", "static get"):
		return MemberGetter
	case n.hasToken("set"):
		return MemberSetter
	case n.Name() == "constructor":
		return MemberConstructor
	}
	return MemberMethod
}

// Name returns the declared identifier of a declaration node: the name of
// a class, function, method, field, variable declarator or object pair.
func (n Node) Name() string {
	for _, field := range []string{"name", "property", "key"} {
		if c := n.Field(field); c.Valid() {
			return unquote(c.Text())
		}
	}
	return ""
}

// Access returns the TypeScript accessibility modifier of a class member.
func (n Node) Access() string {
	for _, c := range n.NamedChildren() {
		if c.Type() == "accessibility_modifier" {
			return c.Text()
		}
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
