package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/doctree/internal/config"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	// TempDir has no .git directory anywhere in its ancestry
	// (unless /tmp itself is a repo, which would be unusual).
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

// Not parallel: resolveDBPath reads the global --db flag.
func TestResolveDBPath(t *testing.T) {
	root := filepath.FromSlash("/repo")
	t.Cleanup(func() { flagDB = "" })

	flagDB = ""
	assert.Equal(t, filepath.Join(root, ".doctree", "docs.db"), resolveDBPath(root, ""))
	assert.Equal(t, filepath.Join(root, "docs.db"), resolveDBPath(root, "docs.db"))

	flagDB = "other.db"
	assert.Equal(t, filepath.Join(root, "other.db"), resolveDBPath(root, "docs.db"), "flag wins over config")

	abs := filepath.Join(t.TempDir(), "abs.db")
	flagDB = abs
	assert.Equal(t, abs, resolveDBPath(root, ""))
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"javascript", "tsx"}, splitList(" javascript, ,tsx "))
	assert.Nil(t, splitList(""))
}

func TestResolveTargetDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = resolveTargetDir([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	file := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = resolveTargetDir([]string{file})
	assert.ErrorContains(t, err, "not a directory")
}

// Not parallel: outputResult reads the global config.
func TestOutputResult(t *testing.T) {
	t.Cleanup(func() { cfg = nil })
	cfg = config.Default()

	builds := []CLIBuild{{ID: "b1", CreatedAt: "2024-03-01T12:00:00Z", Root: "/src", DocCount: 4}}
	changes := []CLIChange{
		{Path: "Babri.kya", Kind: "PropertyDoc", Change: "removed"},
		{Path: "Babri.karta", Kind: "MethodDoc", Change: "changed"},
		{Path: "helper", Kind: "FunctionDoc", Change: "added"},
	}

	var buf bytes.Buffer
	require.NoError(t, outputResult(&buf, builds))
	assert.Contains(t, buf.String(), "ID")
	assert.Contains(t, buf.String(), "b1")

	buf.Reset()
	require.NoError(t, outputResult(&buf, changes))
	assert.Equal(t, "- Babri.kya (PropertyDoc)\n~ Babri.karta (MethodDoc)\n+ helper (FunctionDoc)\n", buf.String())

	buf.Reset()
	require.NoError(t, outputResult(&buf, []CLIChange{}))
	assert.Equal(t, "No changes.\n", buf.String())

	buf.Reset()
	assert.Error(t, outputResult(&buf, 42))

	cfg.Output.Format = "json"
	buf.Reset()
	require.NoError(t, outputResult(&buf, builds))
	assert.JSONEq(t, `[{"id":"b1","created_at":"2024-03-01T12:00:00Z","root":"/src","doc_count":4,"warning_count":0}]`, buf.String())

	cfg.Output.Format = "yaml"
	buf.Reset()
	require.NoError(t, outputResult(&buf, changes[:1]))
	assert.Equal(t, "- path: Babri.kya\n  kind: PropertyDoc\n  change: removed\n", buf.String())
}
