package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/doctree/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestTree builds:
//
//	Babri (class)
//	  kya (property, instance)
//	  karta (method)
//	Pt (typedef of Babri)
func newTestTree(t *testing.T) *model.Tree {
	t.Helper()
	tree := model.NewTree()
	root := tree.Root()

	class := tree.CreateDoc("Babri", model.KindClass, model.Options{
		Brief:   "Yo yo",
		Extends: []string{"Base"},
		Tags:    []model.Tag{{Name: "class"}},
		Loc:     model.Location{File: "babri.js", Line: 2},
	})
	_, ok := tree.AddChildDoc(class, root)
	require.True(t, ok)

	kya := tree.CreateDoc("kya", model.KindProperty, model.Options{
		Scope:    model.ScopeInstance,
		Object:   "this",
		DataType: []string{"PIXI.filters"},
		Brief:    "What is kya?",
	})
	_, ok = tree.AddChildDoc(kya, class)
	require.True(t, ok)

	karta := tree.CreateDoc("karta", model.KindMethod, model.Options{
		Scope:   model.ScopeInstance,
		Params:  []model.Param{{Name: "kyu", DataType: []string{"boolean"}, Optional: true}},
		Returns: []model.Return{{DataType: []string{"number"}}},
		Fires:   []string{"Babri#event:change"},
	})
	_, ok = tree.AddChildDoc(karta, class)
	require.True(t, ok)

	pt := tree.CreateDoc("Pt", model.KindTypedef, model.Options{Alias: "Babri", DataType: []string{"Babri"}})
	pt.Typedef().Org = class.ID
	_, ok = tree.AddChildDoc(pt, root)
	require.True(t, ok)
	return tree
}

func saveTestTree(t *testing.T, s *Store, tree *model.Tree) *Build {
	t.Helper()
	b := &Build{Root: "/src"}
	require.NoError(t, s.SaveTree(tree, b, nil))
	return b
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"builds", "build_files", "docs"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	// Running migrate again should not error.
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

// =============================================================================
// Save & Load
// =============================================================================

func TestSaveTree_AssignsBuildFields(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := saveTestTree(t, s, newTestTree(t))

	assert.NotEmpty(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())
	assert.Equal(t, 4, b.DocCount)

	got, err := s.BuildByID(b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/src", got.Root)
	assert.Equal(t, 4, got.DocCount)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveTree_SkipsDetachedDocs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	tree := newTestTree(t)
	tree.CreateDoc("orphan", model.KindProperty, model.Options{})

	b := saveTestTree(t, s, tree)
	assert.Equal(t, 4, b.DocCount)
}

func TestSaveTree_Files(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	files := []*BuildFile{
		{Path: "a.js", Language: "javascript", Hash: ContentHash([]byte("a")), DocCount: 3},
		{Path: "b.ts", Language: "typescript", Hash: ContentHash([]byte("b")), DocCount: 1},
	}
	b := &Build{}
	require.NoError(t, s.SaveTree(newTestTree(t), b, files))

	got, err := s.BuildFiles(b.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.js", got[0].Path)
	assert.Equal(t, b.ID, got[0].BuildID)
	assert.Positive(t, got[0].ID)
	assert.Equal(t, "typescript", got[1].Language)
	assert.Len(t, got[1].Hash, 64)
}

func TestLoadTree_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := saveTestTree(t, s, newTestTree(t))

	tree, err := s.LoadTree(b.ID)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, 4, tree.Count())

	class, ok := tree.Doc("Babri", tree.Root())
	require.True(t, ok)
	assert.Equal(t, "Yo yo", class.Brief)
	assert.Equal(t, []string{"Base"}, class.Class().Extends)
	assert.Equal(t, model.Location{File: "babri.js", Line: 2}, class.Loc)
	assert.Equal(t, []model.Tag{{Name: "class"}}, class.Tags)

	kya, ok := tree.Doc("Babri#kya", tree.Root())
	require.True(t, ok)
	assert.Equal(t, []string{"Babri", "kya"}, kya.Stack)
	assert.Equal(t, model.ScopeInstance, kya.Property().Scope)
	assert.Equal(t, "this", kya.Property().Object)
	assert.Equal(t, []string{"PIXI.filters"}, kya.Property().DataType)

	karta, ok := tree.Doc("Babri.karta", tree.Root())
	require.True(t, ok)
	f := karta.Function()
	require.NotNil(t, f)
	assert.Equal(t, []model.Param{{Name: "kyu", DataType: []string{"boolean"}, Optional: true}}, f.Params)
	assert.Equal(t, []model.Return{{DataType: []string{"number"}}}, f.Returns)
	assert.Equal(t, []string{"Babri#event:change"}, karta.Fires)

	// Child order survives.
	names := []string{}
	for _, c := range tree.Children(class) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"kya", "karta"}, names)

	pt, ok := tree.Doc("Pt", tree.Root())
	require.True(t, ok)
	assert.Equal(t, class.ID, pt.Typedef().Org)
}

func TestLoadTree_UnknownBuild(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	tree, err := s.LoadTree("missing")
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestLoadTree_EmptyTree(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := saveTestTree(t, s, model.NewTree())

	tree, err := s.LoadTree(b.ID)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, 0, tree.Count())
}

// =============================================================================
// Queries
// =============================================================================

func TestDocByPath(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := saveTestTree(t, s, newTestTree(t))

	r, err := s.DocByPath(b.ID, "Babri#karta")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "MethodDoc", r.Kind)
	assert.Equal(t, "Babri.karta", r.Path)
	assert.Equal(t, 0, r.ParentIndex)
	assert.Equal(t, 1, r.Position)
	assert.NotEmpty(t, r.SignatureHash)

	r, err = s.DocByPath(b.ID, "Babri.nope")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestDocChildren(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := saveTestTree(t, s, newTestTree(t))

	top, err := s.DocChildren(b.ID, -1)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Babri", top[0].Name)
	assert.Equal(t, "Pt", top[1].Name)
	assert.Equal(t, "Babri", top[1].OrgPath)

	members, err := s.DocChildren(b.ID, top[0].Index)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "kya", members[0].Name)
}

func TestDocsByKind(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := saveTestTree(t, s, newTestTree(t))

	props, err := s.DocsByKind(b.ID, "PropertyDoc")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "kya", props[0].Name)
}

func TestBuilds_NewestFirst(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	latest, err := s.LatestBuild()
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &Build{CreatedAt: base}
	second := &Build{CreatedAt: base.Add(time.Hour)}
	require.NoError(t, s.SaveTree(newTestTree(t), first, nil))
	require.NoError(t, s.SaveTree(model.NewTree(), second, nil))

	builds, err := s.Builds()
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, second.ID, builds[0].ID)
	assert.Equal(t, first.ID, builds[1].ID)

	latest, err = s.LatestBuild()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

// =============================================================================
// DeleteBuild & PruneBuilds
// =============================================================================

func TestDeleteBuild(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	files := []*BuildFile{{Path: "a.js", Language: "javascript"}}
	b := &Build{}
	require.NoError(t, s.SaveTree(newTestTree(t), b, files))

	require.NoError(t, s.DeleteBuild(b.ID))

	got, err := s.BuildByID(b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	docs, err := s.DocsByBuild(b.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	bf, err := s.BuildFiles(b.ID)
	require.NoError(t, err)
	assert.Empty(t, bf)
}

func TestPruneBuilds(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		b := &Build{CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, s.SaveTree(newTestTree(t), b, nil))
		ids = append(ids, b.ID)
	}

	removed, err := s.PruneBuilds(1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	builds, err := s.Builds()
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, ids[2], builds[0].ID)

	removed, err = s.PruneBuilds(5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

// =============================================================================
// Diff & Signature Hash
// =============================================================================

func TestDiffBuilds(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	oldBuild := saveTestTree(t, s, newTestTree(t))

	tree := newTestTree(t)
	kya, _ := tree.Doc("Babri.kya", tree.Root())
	kya.Property().DataType = []string{"string"}
	kya.Brief = "prose changes do not count"
	pt, _ := tree.Doc("Pt", tree.Root())
	tree.DetachDoc(pt)
	extra := tree.CreateDoc("extra", model.KindFunction, model.Options{})
	_, ok := tree.AddChildDoc(extra, tree.Root())
	require.True(t, ok)
	newBuild := saveTestTree(t, s, tree)

	changes, err := s.DiffBuilds(oldBuild.ID, newBuild.ID)
	require.NoError(t, err)
	assert.Equal(t, []DocChange{
		{Path: "Babri.kya", Kind: "PropertyDoc", Change: ChangeChanged},
		{Path: "Pt", Kind: "TypedefDoc", Change: ChangeRemoved},
		{Path: "extra", Kind: "FunctionDoc", Change: ChangeAdded},
	}, changes)
}

func TestSignatureHash_Deterministic(t *testing.T) {
	t.Parallel()
	r := &DocRow{Name: "Foo", Kind: "MethodDoc", Params: []model.Param{{Name: "a", DataType: []string{"string"}}}}
	h1 := ComputeSignatureHash(r)
	h2 := ComputeSignatureHash(r)
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}

func TestSignatureHash_UnionOrderIgnored(t *testing.T) {
	t.Parallel()
	h1 := ComputeSignatureHash(&DocRow{Name: "x", DataType: []string{"string", "number"}})
	h2 := ComputeSignatureHash(&DocRow{Name: "x", DataType: []string{"number", "string"}})
	assert.Equal(t, h1, h2)
}

func TestSignatureHash_Changes(t *testing.T) {
	t.Parallel()
	base := DocRow{Name: "Foo", Kind: "MethodDoc", Visibility: "public", Scope: "instance"}
	h := ComputeSignatureHash(&base)

	for name, mutate := range map[string]func(r *DocRow){
		"name":       func(r *DocRow) { r.Name = "Bar" },
		"visibility": func(r *DocRow) { r.Visibility = "private" },
		"scope":      func(r *DocRow) { r.Scope = "static" },
		"param":      func(r *DocRow) { r.Params = []model.Param{{Name: "a"}} },
		"return":     func(r *DocRow) { r.Returns = []model.Return{{DataType: []string{"number"}}} },
	} {
		r := base
		mutate(&r)
		assert.NotEqual(t, h, ComputeSignatureHash(&r), name)
	}

	r := base
	r.Brief, r.Line = "docs", 40
	assert.Equal(t, h, ComputeSignatureHash(&r), "prose and location do not affect the hash")
}
