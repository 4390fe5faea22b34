package assemble

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/syntax"
	"github.com/jward/doctree/internal/tags"
)

// build assembles JavaScript sources, in order, into a finished tree.
func build(t *testing.T, srcs ...string) (*Builder, *model.Tree) {
	t.Helper()
	b := New(WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	for i, src := range srcs {
		f, err := syntax.Parse(context.Background(), "file"+string(rune('a'+i))+".js", []byte(src), "javascript")
		require.NoError(t, err)
		b.AddFile(f)
		f.Close()
	}
	return b, b.Finish()
}

func lookup(t *testing.T, tree *model.Tree, path string) *model.Doc {
	t.Helper()
	d, ok := tree.Doc(path, tree.Root())
	require.True(t, ok, "path %q not in tree", path)
	return d
}

const babri = `
/**
 * Yo yo
 * @class
 */
class Babri
{
    constructor()
    {
        /**
         * What is kya?
         * @member {PIXI.filters}
         */
        this.kya = true;
    }

    /**
     * Do karta.
     * @param {boolean} kyu - whether to
     * @returns {number}
     */
    karta(kyu) {
    }
}
`

func TestBuild_Babri(t *testing.T) {
	t.Parallel()
	b, tree := build(t, babri)
	assert.Empty(t, b.Warnings())

	class := lookup(t, tree, "Babri")
	assert.Equal(t, model.KindClass, class.Kind)
	assert.Equal(t, "Yo yo", class.Brief)
	assert.Equal(t, []string{"Babri"}, class.Stack)

	kya := lookup(t, tree, "Babri.kya")
	assert.Equal(t, model.KindProperty, kya.Kind)
	assert.Equal(t, "Babri.kya", kya.Path)
	assert.Equal(t, []string{"Babri", "kya"}, kya.Stack)
	assert.Equal(t, class.ID, kya.Parent)
	assert.Equal(t, model.ScopeInstance, kya.Property().Scope)
	assert.Equal(t, []string{"PIXI.filters"}, kya.Property().DataType)
	assert.Equal(t, "What is kya?", kya.Brief)
	assert.Equal(t, model.Location{File: "filea.js", Line: 10}, kya.Loc)

	hashed := lookup(t, tree, "Babri#karta")
	assert.Equal(t, model.KindMethod, hashed.Kind)
	f := hashed.Function()
	require.NotNil(t, f)
	require.Len(t, f.Params, 1)
	assert.Equal(t, []string{"boolean"}, f.Params[0].DataType)
	require.Len(t, f.Returns, 1)
	assert.Equal(t, []string{"number"}, f.Returns[0].DataType)
}

func TestBuild_StaticField(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/** Counts. */
class Counter {
    /** How many. */
    static count = 0;
}
`)
	count := lookup(t, tree, "Counter.count")
	assert.Equal(t, model.ScopeStatic, count.Property().Scope)
	assert.Equal(t, []string{"any"}, count.Property().DataType)
}

func TestBuild_UnresolvedParentStaysDetached(t *testing.T) {
	t.Parallel()
	b, tree := build(t, `
class Undocumented {
    constructor() {
        /** orphan */
        this.x = 1;
    }
}
`)
	assert.Equal(t, 0, tree.Count())
	warnings := b.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, UnresolvedParent, warnings[0].Kind)
	assert.Equal(t, "x", warnings[0].Doc)
	assert.Equal(t, "Undocumented", warnings[0].Owner)
}

func TestBuild_ThisOutsideContainer(t *testing.T) {
	t.Parallel()
	b, tree := build(t, "/** stray */\nthis.x = 1;\n")
	assert.Equal(t, 0, tree.Count())
	require.Len(t, b.Warnings(), 1)
	assert.Equal(t, MissingOwner, b.Warnings()[0].Kind)
}

func TestBuild_SkipsUndocumentableComments(t *testing.T) {
	t.Parallel()
	b, tree := build(t, `
/** floating */
/** @typedef {object} Options */
/** just a statement */
if (x) {}
/*** banner ***/
function banner() {}
`)
	assert.Empty(t, b.Warnings())
	assert.Equal(t, 1, tree.Count())
	assert.Equal(t, model.KindTypedef, lookup(t, tree, "Options").Kind)
}

func TestBuild_AssignmentOwners(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/** @namespace */
var PIXI = {};
/** @class */
function Sprite() {}
/** Attached. */
PIXI.Sprite = Sprite;
/** Draws. */
PIXI.Sprite.prototype.draw = function () {};
/** Makes. */
PIXI.Sprite.from = function (src) {};
`)
	lookup(t, tree, "PIXI")
	lookup(t, tree, "Sprite")

	attached := lookup(t, tree, "PIXI.Sprite")
	assert.Equal(t, model.KindProperty, attached.Kind)
	assert.Equal(t, model.ScopeStatic, attached.Property().Scope)

	draw := lookup(t, tree, "PIXI.Sprite.draw")
	assert.Equal(t, model.KindMethod, draw.Kind)
	assert.Equal(t, model.ScopeInstance, draw.Function().Scope)

	from := lookup(t, tree, "PIXI.Sprite#from")
	assert.Equal(t, model.ScopeStatic, from.Function().Scope)
}

func TestBuild_PrivateMembersResolveByPath(t *testing.T) {
	t.Parallel()
	b, tree := build(t, `
/** A. */
class A {
    /** Field count. */
    #count = 0;
    /** Other. */
    #other = 1;
    constructor() {
        /** Assigned count. */
        this.#count = 0;
        /** Secret. */
        this.#secret = 2;
    }
}
`)
	assert.Empty(t, b.Warnings())

	class := lookup(t, tree, "A")
	var names []string
	for _, c := range tree.Children(class) {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"count", "other", "secret"}, names)

	tree.Walk(func(d *model.Doc, _ int) bool {
		got, ok := tree.Doc(d.Path, tree.Root())
		require.True(t, ok, "path %q does not resolve", d.Path)
		assert.Equal(t, d.ID, got.ID)
		return true
	})
	assert.Equal(t, model.VisibilityPrivate, lookup(t, tree, "A.secret").Visibility)
	assert.Equal(t, "Assigned count.", lookup(t, tree, "A.count").Brief)
}

func TestBuild_MethodLocalDoesNotReplaceMember(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/** Yo yo */
class Babri {
    /** Static y. */
    static y = 5;

    /** Do karta. */
    karta() {
        /** a local helper value */
        const y = 1;
    }
}
/** Legacy. */
function Legacy() {
    /** inner z */
    const z = 2;
}
`)
	y := lookup(t, tree, "Babri.y")
	assert.Equal(t, "Static y.", y.Brief)
	assert.Equal(t, model.ScopeStatic, y.Property().Scope)
	assert.Len(t, lookup(t, tree, "Babri").Children, 2)

	z := lookup(t, tree, "Legacy.z")
	assert.Equal(t, model.ScopeInner, z.Property().Scope)
}

func TestBuild_PrototypePropertyIsInstance(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/** @class */
function P() {}
/** X. */
P.prototype.x = 1;
/** Run. */
P.prototype.run = function () {};
`)
	assert.Equal(t, model.ScopeInstance, lookup(t, tree, "P.x").Property().Scope)
	assert.Equal(t, model.ScopeInstance, lookup(t, tree, "P.run").Function().Scope)
}

func TestBuild_MemberOfAndEvents(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/** @class */
class Emitter {}
/**
 * Shared helper.
 * @function helper
 * @memberof Emitter#
 */
/**
 * Fired on change.
 * @event Emitter#event:change
 */
/**
 * Triggers.
 * @fires Emitter#event:change
 */
function trigger() {}
`)
	helper := lookup(t, tree, "Emitter.helper")
	assert.Equal(t, model.KindFunction, helper.Kind)

	change := lookup(t, tree, "Emitter#change")
	assert.Equal(t, model.KindEvent, change.Kind)
	assert.Equal(t, "Fired on change.", change.Brief)

	assert.Equal(t, []string{"Emitter#event:change"}, lookup(t, tree, "trigger").Fires)
}

func TestBuild_ReplaceKeepsChildren(t *testing.T) {
	t.Parallel()
	b, tree := build(t,
		`
/** First. */
class Babri {
    constructor() {
        /** kya */
        this.kya = 1;
    }
}
`,
		`
/** Second. */
class Babri {}
`)
	assert.Empty(t, b.Warnings())
	class := lookup(t, tree, "Babri")
	assert.Equal(t, "Second.", class.Brief)
	assert.Equal(t, "fileb.js", class.Loc.File)
	require.Len(t, class.Children, 1)

	kya := lookup(t, tree, "Babri.kya")
	assert.Equal(t, class.ID, kya.Parent)
	assert.Len(t, tree.Root().Children, 1)
}

func TestBuild_PropertyTags(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/**
 * @typedef {object} Options
 * @property {string} name - display name
 * @property {object} size
 * @property {number} size.width
 * @property {number} missing.height
 */
/**
 * Tagged properties on a class.
 * @class
 * @prop {boolean} enabled
 */
class Widget {}
`)
	name := lookup(t, tree, "Options.name")
	assert.Equal(t, model.KindProperty, name.Kind)
	assert.Equal(t, []string{"string"}, name.Property().DataType)
	assert.Equal(t, "display name", name.Brief)

	width := lookup(t, tree, "Options.size.width")
	assert.Equal(t, []string{"Options", "size", "width"}, width.Stack)

	_, ok := tree.Doc("Options.missing.height", tree.Root())
	assert.False(t, ok)

	enabled := lookup(t, tree, "Widget.enabled")
	assert.Equal(t, model.ScopeInstance, enabled.Property().Scope)
}

func TestFinish_ResolvesTypedefAlias(t *testing.T) {
	t.Parallel()
	_, tree := build(t, `
/** @class */
class Point {}
/** @typedef {Point} Pt */
/** @typedef {string|number} Key */
`)
	pt := lookup(t, tree, "Pt").Typedef()
	require.NotNil(t, pt)
	assert.Equal(t, lookup(t, tree, "Point").ID, pt.Org)

	key := lookup(t, tree, "Key").Typedef()
	assert.Equal(t, model.NoDoc, key.Org)
	assert.Equal(t, []string{"string", "number"}, key.DataType)
}

func TestBuild_TagAliases(t *testing.T) {
	t.Parallel()
	reg, err := tags.Default().WithAliases(map[string]string{"field": "member"})
	require.NoError(t, err)
	b := New(WithRegistry(reg), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	f, err := syntax.Parse(context.Background(), "a.js", []byte("/** @field {Date} created */\nlet x;\n"), "javascript")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 1, b.AddFile(f))

	d := lookup(t, b.Finish(), "created")
	assert.Equal(t, []string{"Date"}, d.Property().DataType)
}

func TestWarning_String(t *testing.T) {
	t.Parallel()
	w := Warning{Kind: UnresolvedParent, Doc: "x", Owner: "A.B", Loc: model.Location{File: "a.js", Line: 3}}
	assert.Equal(t, `a.js:3: unresolved-parent: x (owner "A.B")`, w.String())
}
