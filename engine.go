package doctree

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jward/doctree/internal/assemble"
	"github.com/jward/doctree/internal/config"
	"github.com/jward/doctree/internal/export"
	"github.com/jward/doctree/internal/runtime"
	"github.com/jward/doctree/internal/store"
	"github.com/jward/doctree/internal/syntax"
	"github.com/jward/doctree/internal/tags"
)

// Engine orchestrates the doctree pipeline: file discovery, parsing,
// assembly into a doc tree, filtering, persistence and export.
type Engine struct {
	store      *store.Store // nil unless WithStore
	dbPath     string
	runtime    *runtime.Runtime
	scriptsDir string
	registry   *tags.Registry
	logger     *slog.Logger

	languages map[string]bool // nil means all languages
	aliases   map[string]string
	include   []string
	exclude   []string
	skipDirs  map[string]bool
	filter    string
	keep      int

	includeGlobs []glob.Glob
	excludeGlobs []glob.Glob

	// useParallel enables the parallel parse phase.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will process.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		if len(languages) == 0 {
			e.languages = nil
			return
		}
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// WithParallel controls parallel parsing. When true (default), BuildFiles
// parses files on a worker pool and assembles them serially in path order.
// Set to false for a fully serial build.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithStore persists builds to a SQLite database at dbPath.
func WithStore(dbPath string) Option {
	return func(e *Engine) {
		e.dbPath = dbPath
	}
}

// WithKeepBuilds keeps only the newest n builds after each Save. Zero keeps
// every build.
func WithKeepBuilds(n int) Option {
	return func(e *Engine) {
		e.keep = n
	}
}

// WithLogger sets the logger used for build progress and placement
// warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTagAliases maps extra tag names onto built-in tags.
func WithTagAliases(aliases map[string]string) Option {
	return func(e *Engine) {
		e.aliases = aliases
	}
}

// WithInclude sets the glob patterns a file's root-relative path must match
// to be built. Defaults to every file.
func WithInclude(patterns ...string) Option {
	return func(e *Engine) {
		e.include = patterns
	}
}

// WithExclude sets glob patterns of root-relative paths to leave out.
func WithExclude(patterns ...string) Option {
	return func(e *Engine) {
		e.exclude = patterns
	}
}

// WithSkipDirs replaces the directory names never descended into.
func WithSkipDirs(names ...string) Option {
	return func(e *Engine) {
		e.skipDirs = make(map[string]bool, len(names))
		for _, n := range names {
			e.skipDirs[n] = true
		}
	}
}

// WithFilter prunes every built tree with a Risor filter expression.
func WithFilter(expr string) Option {
	return func(e *Engine) {
		e.filter = expr
	}
}

// WithScriptsDir sets the directory Risor scripts and their imports are
// loaded from.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// ConfigOptions translates a loaded config file into Engine options.
func ConfigOptions(cfg *config.Config) []Option {
	opts := []Option{
		WithInclude(cfg.Input.Include...),
		WithExclude(cfg.Input.Exclude...),
		WithSkipDirs(cfg.Input.SkipDirs...),
		WithLanguages(cfg.Input.Languages...),
		WithTagAliases(cfg.Tags.Aliases),
		WithKeepBuilds(cfg.Output.KeepBuilds),
	}
	if cfg.Output.DB != "" {
		opts = append(opts, WithStore(cfg.Output.DB))
	}
	if cfg.Filter.Expr != "" {
		opts = append(opts, WithFilter(cfg.Filter.Expr))
	}
	return opts
}

// New creates an Engine. With WithStore the database is opened and
// migrated.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:      slog.Default(),
		useParallel: true,
	}
	WithSkipDirs(config.DefaultSkipDirs...)(e)
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.includeGlobs, err = compileGlobs(e.include); err != nil {
		return nil, err
	}
	if e.excludeGlobs, err = compileGlobs(e.exclude); err != nil {
		return nil, err
	}

	e.registry = tags.Default()
	if len(e.aliases) > 0 {
		if e.registry, err = e.registry.WithAliases(e.aliases); err != nil {
			return nil, fmt.Errorf("doctree: %w", err)
		}
	}

	if e.dbPath != "" {
		s, err := store.NewStore(e.dbPath)
		if err != nil {
			return nil, fmt.Errorf("doctree: create store: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("doctree: migrate: %w", err)
		}
		e.store = s
	}
	e.runtime = runtime.NewRuntime(e.store, e.scriptsDir, runtime.WithRuntimeLogger(e.logger))

	if e.filter != "" {
		if _, err := runtime.NewFilter(e.filter, e.runtime); err != nil {
			e.Close()
			return nil, fmt.Errorf("doctree: %w", err)
		}
	}
	return e, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("doctree: pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the underlying Store, or nil when the Engine has none.
func (e *Engine) Store() *Store {
	return e.store
}

// Runtime returns the Risor runtime used for filters and scripts.
func (e *Engine) Runtime() *runtime.Runtime {
	return e.runtime
}

// BuildSource builds a doc tree from a single in-memory source. The
// language is taken from path's extension.
func (e *Engine) BuildSource(ctx context.Context, path string, src []byte) (*Result, error) {
	lang, ok := syntax.LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("doctree: unsupported file type: %s", path)
	}
	f, err := syntax.Parse(ctx, path, src, lang)
	if err != nil {
		return nil, fmt.Errorf("doctree: %w", err)
	}
	defer f.Close()

	b := e.newBuilder()
	n := b.AddFile(f)
	res := &Result{
		Files: []*BuildFile{{Path: path, Language: lang, Hash: store.ContentHash(src), DocCount: n}},
	}
	return e.finish(ctx, b, res)
}

// BuildFiles builds one doc tree from the given files. Paths are reported
// relative to root when root is non-empty. Files are assembled in sorted
// path order so the result does not depend on the parse schedule.
// Unsupported and filtered-out files are skipped; read and parse errors
// fail the build after every file has been tried.
func (e *Engine) BuildFiles(ctx context.Context, root string, paths []string) (*Result, error) {
	var items []parseItem
	for _, path := range paths {
		lang, ok := syntax.LanguageForFile(path)
		if !ok {
			continue
		}
		if e.languages != nil && !e.languages[lang] {
			continue
		}
		items = append(items, parseItem{path: path, display: displayPath(root, path), lang: lang})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].display < items[j].display })

	var parsed []parsedFile
	if e.useParallel {
		parsed = e.parseParallel(ctx, items)
	} else {
		parsed = e.parseSerial(ctx, items)
	}

	var errs []error
	for _, p := range parsed {
		if p.err != nil {
			errs = append(errs, p.err)
		}
	}
	if len(errs) > 0 {
		for _, p := range parsed {
			if p.file != nil {
				p.file.Close()
			}
		}
		return nil, fmt.Errorf("doctree: build had %d error(s): %w", len(errs), errs[0])
	}

	b := e.newBuilder()
	res := &Result{Root: root}
	for _, p := range parsed {
		n := b.AddFile(p.file)
		p.file.Close()
		res.Files = append(res.Files, &BuildFile{
			Path:     p.item.display,
			Language: p.item.lang,
			Hash:     p.hash,
			DocCount: n,
		})
		e.logger.Debug("assembled file", "file", p.item.display, "docs", n)
	}
	return e.finish(ctx, b, res)
}

// BuildDirectory builds a doc tree from every selected file under root.
// If root is inside a git repository, git ls-files is used so .gitignore
// is respected; otherwise the directory is walked. Either way skip
// directories and include/exclude patterns apply.
func (e *Engine) BuildDirectory(ctx context.Context, root string) (*Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("doctree: %w", err)
	}
	paths, err := e.gitListFiles(abs)
	if err != nil {
		// Not a git repo or git not available; fall back to walk.
		paths, err = e.walkListFiles(abs)
		if err != nil {
			return nil, err
		}
	}
	e.logger.Info("building docs", "root", abs, "files", len(paths))
	return e.BuildFiles(ctx, abs, paths)
}

func (e *Engine) newBuilder() *assemble.Builder {
	return assemble.New(assemble.WithRegistry(e.registry), assemble.WithLogger(e.logger))
}

func (e *Engine) finish(ctx context.Context, b *assemble.Builder, res *Result) (*Result, error) {
	res.Tree = b.Finish()
	res.Warnings = b.Warnings()
	if e.filter != "" {
		f, err := runtime.NewFilter(e.filter, e.runtime)
		if err != nil {
			return nil, fmt.Errorf("doctree: %w", err)
		}
		if res.Pruned, err = runtime.Prune(ctx, res.Tree, f); err != nil {
			return nil, fmt.Errorf("doctree: %w", err)
		}
	}
	e.logger.Info("build complete",
		"files", len(res.Files),
		"docs", res.Tree.Count(),
		"warnings", len(res.Warnings),
		"pruned", res.Pruned,
	)
	return res, nil
}

// Save persists a build result. With WithKeepBuilds, older builds beyond
// the limit are deleted afterwards.
func (e *Engine) Save(res *Result) (*Build, error) {
	if e.store == nil {
		return nil, fmt.Errorf("doctree: save: no store configured")
	}
	b := &Build{Root: res.Root, WarningCount: len(res.Warnings)}
	if err := e.store.SaveTree(res.Tree, b, res.Files); err != nil {
		return nil, fmt.Errorf("doctree: save: %w", err)
	}
	if e.keep > 0 {
		n, err := e.store.PruneBuilds(e.keep)
		if err != nil {
			return nil, fmt.Errorf("doctree: prune builds: %w", err)
		}
		if n > 0 {
			e.logger.Debug("pruned old builds", "count", n)
		}
	}
	return b, nil
}

// LoadBuild reloads a saved build's tree. An empty id loads the latest
// build. Returns (nil, nil, nil) when there is no such build.
func (e *Engine) LoadBuild(id string) (*Build, *Tree, error) {
	if e.store == nil {
		return nil, nil, fmt.Errorf("doctree: load: no store configured")
	}
	var (
		b   *Build
		err error
	)
	if id == "" {
		b, err = e.store.LatestBuild()
	} else {
		b, err = e.store.BuildByID(id)
	}
	if err != nil || b == nil {
		return nil, nil, err
	}
	t, err := e.store.LoadTree(b.ID)
	if err != nil {
		return nil, nil, err
	}
	return b, t, nil
}

// Export writes t's top-level docs and their subtrees in format ("json",
// "yaml" or "text").
func (e *Engine) Export(w io.Writer, t *Tree, format string) error {
	return export.Write(w, format, export.Views(t))
}

// selected reports whether a root-relative slash path passes the include
// and exclude patterns and the language restriction.
func (e *Engine) selected(rel string) bool {
	lang, ok := syntax.LanguageForFile(rel)
	if !ok {
		return false
	}
	if e.languages != nil && !e.languages[lang] {
		return false
	}
	for _, dir := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if e.skipDirs[dir] {
			return false
		}
	}
	if len(e.includeGlobs) > 0 && !matchAny(e.includeGlobs, rel) {
		return false
	}
	return !matchAny(e.excludeGlobs, rel)
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered by the engine's selection.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if e.selected(line) {
			paths = append(paths, filepath.Join(root, filepath.FromSlash(line)))
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && e.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if e.selected(filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("doctree: walk directory: %w", err)
	}
	return paths, nil
}

// displayPath returns path relative to root with forward slashes, or path
// unchanged when it is not under root.
func displayPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func readFile(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return src, nil
}
