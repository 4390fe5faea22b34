// Package model holds the documentation entity model and the path
// resolver that places entities into a doc tree.
//
// A Tree is an arena: it owns every Doc and hands out stable DocIDs.
// Parent and Children links are DocIDs into the same arena, so the
// parent/children cycle never forms an ownership cycle.
package model

import "slices"

// DocID is a stable handle of a Doc inside its Tree.
type DocID int

// NoDoc is the DocID of a missing parent.
const NoDoc DocID = -1

// Tag is one {name, value} pair produced by the comment tokenizer.
type Tag struct {
	Name  string
	Value string
}

// Param documents one function or constructor parameter.
type Param struct {
	Name        string
	DataType    []string
	Description string
	Optional    bool
	Default     string
}

// Return documents a return value.
type Return struct {
	DataType    []string
	Description string
}

// Location is where a doc comment was found.
type Location struct {
	File string
	Line int
}

// Doc is one node of the doc tree. Fields shared by all kinds live on Doc
// itself; variant fields live in Detail.
type Doc struct {
	ID       DocID
	Kind     Kind
	Name     string
	Path     string
	Stack    []string
	Parent   DocID
	Children []DocID

	Tags        []Tag
	Brief       string
	Description string
	Visibility  Visibility
	Version     Version
	Fires       []string
	Loc         Location

	Detail Detail
}

// Detail is the variant payload of a Doc. The set of implementations is
// closed: ClassDetail, FunctionDetail, PropertyDetail and TypedefDetail.
type Detail interface {
	detail()
}

// ClassDetail is the payload of ClassDoc.
type ClassDetail struct {
	Params  []Param
	Extends []string
}

// FunctionDetail is the payload of FunctionDoc and MethodDoc.
type FunctionDetail struct {
	Params  []Param
	Returns []Return
	Scope   Scope
}

// PropertyDetail is the payload of PropertyDoc. Object is the owner
// reference of an assigned property ("this" or the object's name).
type PropertyDetail struct {
	Scope    Scope
	Object   string
	DataType []string
}

// TypedefDetail is the payload of TypedefDoc. Org is NoDoc until the alias
// resolves to a doc in the same tree.
type TypedefDetail struct {
	Org      DocID
	Alias    string
	DataType []string
}

func (*ClassDetail) detail()    {}
func (*FunctionDetail) detail() {}
func (*PropertyDetail) detail() {}
func (*TypedefDetail) detail()  {}

// Property returns the property payload, or nil for other kinds.
func (d *Doc) Property() *PropertyDetail {
	p, _ := d.Detail.(*PropertyDetail)
	return p
}

// Function returns the function/method payload, or nil for other kinds.
func (d *Doc) Function() *FunctionDetail {
	f, _ := d.Detail.(*FunctionDetail)
	return f
}

// Class returns the class payload, or nil for other kinds.
func (d *Doc) Class() *ClassDetail {
	c, _ := d.Detail.(*ClassDetail)
	return c
}

// Typedef returns the typedef payload, or nil for other kinds.
func (d *Doc) Typedef() *TypedefDetail {
	t, _ := d.Detail.(*TypedefDetail)
	return t
}

// Attached reports whether the doc currently has a parent.
func (d *Doc) Attached() bool {
	return d.Parent != NoDoc
}

// Options is the provisional doc-creation request accumulated by tag
// handlers. Zero values mean "not set".
type Options struct {
	Name        string
	Kind        Kind
	Visibility  Visibility
	Version     Version
	Scope       Scope
	Object      string
	MemberOf    string
	DataType    []string
	Params      []Param
	Returns     []Return
	Properties  []Param
	Extends     []string
	Alias       string
	Fires       []string
	Brief       string
	Description string
	Tags        []Tag
	Loc         Location
}

// CreateDoc allocates a detached doc of the given kind in the arena. Base
// fields get their defaults and every non-zero field of opts is merged over
// them. No validation is done; callers supply what their variant needs.
func (t *Tree) CreateDoc(name string, kind Kind, opts Options) *Doc {
	d := &Doc{
		ID:         DocID(len(t.docs)),
		Kind:       kind,
		Name:       name,
		Parent:     NoDoc,
		Visibility: VisibilityPublic,
		Version:    VersionPublic,
	}
	if opts.Visibility != "" {
		d.Visibility = opts.Visibility
	}
	if opts.Version != "" {
		d.Version = opts.Version
	}
	d.Brief = opts.Brief
	d.Description = opts.Description
	d.Tags = slices.Clone(opts.Tags)
	d.Fires = slices.Clone(opts.Fires)
	d.Loc = opts.Loc

	switch kind {
	case KindClass:
		d.Detail = &ClassDetail{
			Params:  slices.Clone(opts.Params),
			Extends: slices.Clone(opts.Extends),
		}
	case KindFunction, KindMethod:
		d.Detail = &FunctionDetail{
			Params:  slices.Clone(opts.Params),
			Returns: slices.Clone(opts.Returns),
			Scope:   opts.Scope,
		}
	case KindProperty:
		d.Detail = &PropertyDetail{
			Scope:    opts.Scope,
			Object:   opts.Object,
			DataType: slices.Clone(opts.DataType),
		}
	case KindTypedef:
		d.Detail = &TypedefDetail{
			Org:      NoDoc,
			Alias:    opts.Alias,
			DataType: slices.Clone(opts.DataType),
		}
	case KindRoot, KindObject, KindEvent, KindNone:
	}

	t.docs = append(t.docs, d)
	return d
}
