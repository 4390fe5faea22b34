package syntax

import (
	"slices"
	"strings"
)

// DocComment is a "/** ... */" comment paired with the node it documents.
type DocComment struct {
	Text string
	Line int

	// Node is the next named sibling of the comment, or the invalid Node
	// when the comment is followed by another comment or nothing at all.
	Node Node

	// Enclosing lists the names of the containers around the comment,
	// outermost first: classes, named functions and object literals bound
	// to a name.
	Enclosing []string
}

// DocComments returns the documentation comments of the file in source
// order.
func (f *File) DocComments() []DocComment {
	var out []DocComment
	var visit func(n Node)
	visit = func(n Node) {
		if n.Type() == "comment" {
			if text := n.Text(); strings.HasPrefix(text, "/**") {
				out = append(out, DocComment{
					Text:      text,
					Line:      n.Line(),
					Node:      documented(n),
					Enclosing: enclosing(n),
				})
			}
			return
		}
		for _, c := range n.NamedChildren() {
			visit(c)
		}
	}
	visit(f.Root())
	return out
}

func documented(comment Node) Node {
	next := comment.NextNamedSibling()
	if next.Type() == "comment" {
		return Node{}
	}
	return next
}

func enclosing(n Node) []string {
	var names []string
	for p := n.Parent(); p.Valid(); p = p.Parent() {
		if name := containerName(p); name != "" {
			names = append(names, name)
		}
	}
	slices.Reverse(names)
	return names
}

// containerName returns the name a node contributes to the lexical path of
// the docs inside it, or "" when it contributes nothing.
func containerName(n Node) string {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "function_declaration", "generator_function_declaration":
		return n.Name()
	case "class", "object", "function", "function_expression":
		if name := n.Name(); name != "" && n.Type() == "class" {
			return name
		}
		switch p := n.Parent(); p.Type() {
		case "variable_declarator", "pair":
			return p.Name()
		case "assignment_expression":
			if left := p.Field("left"); left.Type() == "identifier" {
				return left.Text()
			}
		}
	}
	return ""
}
