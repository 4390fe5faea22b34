// Package assemble drives the single pass that turns the doc comments of
// parsed source files into a doc tree.
//
// For every comment, in source order: the comment is tokenized, its tags
// are dispatched into creation options, the documented node is classified,
// a node-shape parser creates a detached doc, and the doc is placed into
// the tree below its owner. Comments that document nothing are skipped
// silently. Docs whose owner is not in the tree stay detached and are
// reported as warnings.
package assemble

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jward/doctree/internal/comment"
	"github.com/jward/doctree/internal/docparse"
	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/syntax"
	"github.com/jward/doctree/internal/tags"
)

// WarningKind classifies a placement failure.
type WarningKind string

const (
	// UnresolvedParent means an ancestor of the doc's stack is not in the
	// tree.
	UnresolvedParent WarningKind = "unresolved-parent"
	// MissingOwner means a "this" member was documented outside of any
	// class, function or object.
	MissingOwner WarningKind = "missing-owner"
)

// Warning records a doc that was created but could not be placed.
type Warning struct {
	Kind  WarningKind
	Doc   string
	Owner string
	Loc   model.Location
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s: %s (owner %q)", w.Loc.File, w.Loc.Line, w.Kind, w.Doc, w.Owner)
}

// Builder accumulates docs from files into one tree. A Builder is not safe
// for concurrent use.
type Builder struct {
	tree     *model.Tree
	registry *tags.Registry
	logger   *slog.Logger
	warnings []Warning
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry sets the tag registry. Defaults to tags.Default().
func WithRegistry(r *tags.Registry) Option {
	return func(b *Builder) {
		b.registry = r
	}
}

// WithLogger sets the logger placement warnings are written to.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// New returns a Builder over a fresh tree.
func New(opts ...Option) *Builder {
	b := &Builder{
		tree:     model.NewTree(),
		registry: tags.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Tree returns the tree being built.
func (b *Builder) Tree() *model.Tree {
	return b.tree
}

// Warnings returns the placement warnings recorded so far.
func (b *Builder) Warnings() []Warning {
	return slices.Clone(b.warnings)
}

// AddFile assembles every doc comment of f in source order and returns the
// number of docs placed into the tree.
func (b *Builder) AddFile(f *syntax.File) int {
	placed := 0
	for _, c := range f.DocComments() {
		if _, ok := b.AddComment(f.Path, c); ok {
			placed++
		}
	}
	return placed
}

// AddComment assembles a single doc comment found in file. It returns the
// doc and whether it was placed. A doc is returned detached, with false,
// when its owner could not be resolved; nil is returned when the comment
// documents nothing.
func (b *Builder) AddComment(file string, c syntax.DocComment) (*model.Doc, bool) {
	if !comment.IsDoc(c.Text) {
		return nil, false
	}
	parsed := comment.Parse(c.Text)
	loc := model.Location{File: file, Line: c.Line}
	opts := b.registry.Apply(parsed.Tags, model.Options{
		Brief:       parsed.Brief,
		Description: parsed.Description,
		Loc:         loc,
	})

	shape := syntax.Classify(c.Node)
	doc, ok := docparse.Parse(b.tree, shape, opts)
	if !ok {
		b.logger.Debug("nothing documented", "file", file, "line", c.Line, "node", c.Node.Type())
		return nil, false
	}

	owner, ok := b.owner(shape, opts, c)
	if !ok {
		b.warn(MissingOwner, doc, "this")
		return doc, false
	}
	doc.Stack = append(owner, doc.Name)
	if !b.place(doc) {
		return doc, false
	}
	b.addProperties(doc, opts.Properties)
	return doc, true
}

// owner returns the stack of the doc's parent. An explicit @memberof wins,
// then the owner object of an assignment, then the lexical containers.
func (b *Builder) owner(shape syntax.Shape, opts model.Options, c syntax.DocComment) ([]string, bool) {
	if opts.MemberOf != "" {
		return model.SplitPath(opts.MemberOf), true
	}
	if a, ok := shape.(syntax.Assignment); ok {
		if !a.OwnerIsThis {
			return ownerStack(a.Owner), true
		}
		if len(c.Enclosing) == 0 {
			return nil, false
		}
	}
	return slices.Clone(c.Enclosing), true
}

// ownerStack splits an assignment owner such as "PIXI.Sprite.prototype"
// into the stack of the doc it names.
func ownerStack(owner string) []string {
	return slices.DeleteFunc(model.SplitPath(owner), func(s string) bool {
		return s == "prototype"
	})
}

// place inserts doc at its stack. When a same-named doc is replaced, the
// replaced doc's children move under the new doc.
func (b *Builder) place(doc *model.Doc) bool {
	root := b.tree.Root()
	old, hadOld := b.tree.DocByStack(doc.Stack, root)
	if _, ok := b.tree.AddDoc(doc, root); !ok {
		b.warn(UnresolvedParent, doc, strings.Join(doc.Stack[:len(doc.Stack)-1], "."))
		return false
	}
	if hadOld && old.ID != doc.ID {
		for _, child := range b.tree.Children(old) {
			b.tree.AddChildDoc(child, doc)
		}
		b.logger.Debug("doc replaced", "path", doc.Path, "old_line", old.Loc.Line, "new_line", doc.Loc.Line)
	}
	return true
}

// addProperties turns @property tags into property docs below doc. Dotted
// property names nest below earlier properties.
func (b *Builder) addProperties(doc *model.Doc, props []model.Param) {
	if len(props) == 0 {
		return
	}
	switch doc.Kind {
	case model.KindTypedef, model.KindClass, model.KindObject:
	default:
		return
	}
	for _, p := range props {
		segments := model.SplitPath(p.Name)
		if len(segments) == 0 {
			continue
		}
		dataType := p.DataType
		if len(dataType) == 0 {
			dataType = []string{"any"}
		}
		opts := model.Options{
			DataType:    dataType,
			Description: p.Description,
			Brief:       comment.Brief(p.Description),
			Loc:         doc.Loc,
		}
		if doc.Kind == model.KindClass {
			opts.Scope = model.ScopeInstance
		}
		prop := b.tree.CreateDoc(segments[len(segments)-1], model.KindProperty, opts)
		prop.Stack = append(slices.Clone(segments[:len(segments)-1]), prop.Name)
		if _, ok := b.tree.AddDoc(prop, doc); !ok {
			b.warn(UnresolvedParent, prop, doc.Path+"."+strings.Join(segments[:len(segments)-1], "."))
		}
	}
}

// Finish resolves typedef aliases against the completed tree and returns
// it. Calling Finish more than once is harmless.
func (b *Builder) Finish() *model.Tree {
	root := b.tree.Root()
	b.tree.Walk(func(d *model.Doc, _ int) bool {
		td := d.Typedef()
		if td == nil || td.Alias == "" {
			return true
		}
		if org, ok := b.tree.Doc(td.Alias, root); ok && org.ID != d.ID {
			td.Org = org.ID
		}
		return true
	})
	return b.tree
}

func (b *Builder) warn(kind WarningKind, doc *model.Doc, owner string) {
	w := Warning{Kind: kind, Doc: doc.Name, Owner: owner, Loc: doc.Loc}
	b.warnings = append(b.warnings, w)
	b.logger.Warn("doc not placed",
		"reason", string(kind),
		"doc", doc.Name,
		"owner", owner,
		"file", doc.Loc.File,
		"line", doc.Loc.Line,
	)
}
