package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseJS(t *testing.T, src string) *File {
	t.Helper()
	return parseLang(t, src, "javascript")
}

func parseLang(t *testing.T, src, lang string) *File {
	t.Helper()
	f, err := Parse(context.Background(), "test", []byte(src), lang)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

// shapes returns the shape of every doc comment's node in order.
func shapes(f *File) []Shape {
	var out []Shape
	for _, c := range f.DocComments() {
		out = append(out, Classify(c.Node))
	}
	return out
}

const babri = `
/**
 * Yo yo
 * @class
 */
class Babri extends Base
{
    constructor()
    {
        /**
         * What is kya?
         * @member {PIXI.filters}
         */
        this.kya = true;
    }

    /** Do karta. */
    karta(kyu, [a, b], ...rest) {
    }

    /** count */
    static count = 0;

    /** getter */
    get size() { return 1; }

    /** setter */
    set size(v) {}
}
`

func TestDocComments_PairsNodesAndScopes(t *testing.T) {
	t.Parallel()
	f := parseJS(t, babri)
	comments := f.DocComments()
	require.Len(t, comments, 6)

	assert.Equal(t, 2, comments[0].Line)
	assert.Empty(t, comments[0].Enclosing)
	assert.Equal(t, "class_declaration", comments[0].Node.Type())

	for _, c := range comments[1:] {
		assert.Equal(t, []string{"Babri"}, c.Enclosing, c.Text)
	}
	assert.Equal(t, "expression_statement", comments[1].Node.Type())
}

func TestClassify_Shapes(t *testing.T) {
	t.Parallel()
	got := shapes(parseJS(t, babri))
	require.Len(t, got, 6)

	assert.Equal(t, ClassDecl{Name: "Babri", Extends: []string{"Base"}}, got[0])
	assert.Equal(t, Assignment{Owner: "this", OwnerIsThis: true, Property: "kya"}, got[1])

	m, ok := got[2].(ClassMember)
	require.True(t, ok)
	assert.Equal(t, "karta", m.Name)
	assert.Equal(t, MemberMethod, m.Kind)
	assert.False(t, m.Static)
	assert.Equal(t, []string{"kyu", "[a, b]", "rest"}, m.Params)

	field, ok := got[3].(ClassMember)
	require.True(t, ok)
	assert.Equal(t, ClassMember{Name: "count", Kind: MemberField, Static: true}, field)

	getter, ok := got[4].(ClassMember)
	require.True(t, ok)
	assert.Equal(t, MemberGetter, getter.Kind)
	assert.Equal(t, "size", getter.Name)

	setter, ok := got[5].(ClassMember)
	require.True(t, ok)
	assert.Equal(t, MemberSetter, setter.Kind)
}

func TestClassify_StaticAssignmentAndDeclarations(t *testing.T) {
	t.Parallel()
	f := parseJS(t, `
/** a */
Babri.count = 0;
/** b */
function helper(a, b = 2) {}
/** c */
export const make = (x) => x;
/** d */
const config = { debug: true };
/** e */
export default class Named {}
/** floating */
/** f */
let plain = 5;
`)
	got := shapes(f)
	require.Len(t, got, 7)

	assert.Equal(t, Assignment{Owner: "Babri", Property: "count"}, got[0])
	assert.Equal(t, FunctionDecl{Name: "helper", Params: []string{"a", "b"}}, got[1])
	assert.Equal(t, VariableDecl{Name: "make", Value: ValueFunction, Params: []string{"x"}}, got[2])
	assert.Equal(t, VariableDecl{Name: "config", Value: ValueObject}, got[3])
	assert.Equal(t, ClassDecl{Name: "Named"}, got[4])
	assert.Equal(t, Unknown{}, got[5])
	assert.Equal(t, VariableDecl{Name: "plain", Value: ValueOther}, got[6])
}

func TestDocComments_ObjectAndFunctionScopes(t *testing.T) {
	t.Parallel()
	f := parseJS(t, `
const PIXI = {
    filters: {
        /** blur */
        blur: 1,
    },
};
function Legacy() {
    /** x */
    this.x = 1;
}
`)
	comments := f.DocComments()
	require.Len(t, comments, 2)
	assert.Equal(t, []string{"PIXI", "filters"}, comments[0].Enclosing)
	assert.Equal(t, ObjectMember{Name: "blur"}, Classify(comments[0].Node))
	assert.Equal(t, []string{"Legacy"}, comments[1].Enclosing)
}

func TestClassify_LocalDeclarations(t *testing.T) {
	t.Parallel()
	f := parseJS(t, `
class Babri {
    karta() {
        /** in a method */
        const y = 1;
    }
}
function Legacy() {
    /** in a named function */
    let z = 2;
}
const run = () => {
    /** in an arrow */
    var w = 3;
};
`)
	got := shapes(f)
	require.Len(t, got, 3)

	assert.Equal(t, VariableDecl{Name: "y", Value: ValueOther, Local: true}, got[0])
	assert.Equal(t, VariableDecl{Name: "z", Value: ValueOther, Local: true, Function: "Legacy"}, got[1])
	assert.Equal(t, VariableDecl{Name: "w", Value: ValueOther, Local: true}, got[2])
}

func TestClassify_TypeScriptMembers(t *testing.T) {
	t.Parallel()
	f := parseLang(t, `
class Store {
    /** items */
    private static items: string[] = [];
    /** add */
    protected add(item: string, count?: number): void {}
}
`, "typescript")
	got := shapes(f)
	require.Len(t, got, 2)

	field, ok := got[0].(ClassMember)
	require.True(t, ok)
	assert.Equal(t, "items", field.Name)
	assert.True(t, field.Static)
	assert.Equal(t, "private", field.Access)

	m, ok := got[1].(ClassMember)
	require.True(t, ok)
	assert.Equal(t, "protected", m.Access)
	assert.Equal(t, []string{"item", "count"}, m.Params)
}

func TestPredicates(t *testing.T) {
	t.Parallel()
	f := parseJS(t, "/** a */\nthis.kya = true;\n")
	node := f.DocComments()[0].Node
	assert.True(t, node.IsExpressionStatement())
	assert.True(t, node.Expression().IsAssignmentExpression())
	assert.True(t, node.Expression().Field("left").Field("object").IsThisExpression())
	assert.False(t, node.IsClassProperty())
	assert.False(t, node.IsClassMethod())

	var zero Node
	assert.False(t, zero.Valid())
	assert.False(t, zero.IsExpressionStatement())
	assert.Equal(t, "", zero.Text())
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		lang string
		ok   bool
	}{
		{"a/b.js", "javascript", true},
		{"a/b.MJS", "javascript", true},
		{"a/b.ts", "typescript", true},
		{"a/b.d.ts", "typescript", true},
		{"a/b.tsx", "tsx", true},
		{"a/b.go", "", false},
	}
	for _, tt := range tests {
		lang, ok := LanguageForFile(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.lang, lang, tt.path)
	}
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	t.Parallel()
	_, err := Parse(context.Background(), "x.rb", []byte("x"), "ruby")
	assert.Error(t, err)
}
