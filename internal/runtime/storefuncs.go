package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/risor-io/risor/object"

	"github.com/jward/doctree/internal/store"
)

// --- Build query functions ---

func buildObject(b *store.Build) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":            object.NewString(b.ID),
		"created_at":    object.NewString(b.CreatedAt.UTC().Format(time.RFC3339)),
		"root":          object.NewString(b.Root),
		"doc_count":     object.NewInt(int64(b.DocCount)),
		"warning_count": object.NewInt(int64(b.WarningCount)),
	})
}

// builds() → []map, newest first
func makeBuildsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("builds", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("builds", 0, len(args))
		}
		builds, err := s.Builds()
		if err != nil {
			return object.Errorf("builds: %v", err)
		}
		results := []object.Object{}
		for _, b := range builds {
			results = append(results, buildObject(b))
		}
		return object.NewList(results)
	})
}

// latest_build() → map or nil
func makeLatestBuildFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("latest_build", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("latest_build", 0, len(args))
		}
		b, err := s.LatestBuild()
		if err != nil {
			return object.Errorf("latest_build: %v", err)
		}
		if b == nil {
			return object.Nil
		}
		return buildObject(b)
	})
}

// --- Doc query functions ---

// doc_by_path(build_id, path) → map or nil
func makeDocByPathFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("doc_by_path", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("doc_by_path", 2, len(args))
		}
		buildID, err := toString(args[0])
		if err != nil {
			return object.Errorf("doc_by_path: %v", err)
		}
		path, err := toString(args[1])
		if err != nil {
			return object.Errorf("doc_by_path: %v", err)
		}
		r, err := s.DocByPath(buildID, path)
		if err != nil {
			return object.Errorf("doc_by_path: %v", err)
		}
		if r == nil {
			return object.Nil
		}
		return rowObject(r)
	})
}

// doc_children(build_id, path) → []map. An empty path lists the top level.
func makeDocChildrenFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("doc_children", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("doc_children", 2, len(args))
		}
		buildID, err := toString(args[0])
		if err != nil {
			return object.Errorf("doc_children: %v", err)
		}
		path, err := toString(args[1])
		if err != nil {
			return object.Errorf("doc_children: %v", err)
		}

		index := -1
		if path != "" {
			parent, err := s.DocByPath(buildID, path)
			if err != nil {
				return object.Errorf("doc_children: %v", err)
			}
			if parent == nil {
				return object.Errorf("doc_children: no doc at %q", path)
			}
			index = parent.Index
		}
		rows, err := s.DocChildren(buildID, index)
		if err != nil {
			return object.Errorf("doc_children: %v", err)
		}
		return rowsToList(rows)
	})
}

// docs_by_kind(build_id, kind) → []map
func makeDocsByKindFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("docs_by_kind", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("docs_by_kind", 2, len(args))
		}
		buildID, err := toString(args[0])
		if err != nil {
			return object.Errorf("docs_by_kind: %v", err)
		}
		kind, err := toString(args[1])
		if err != nil {
			return object.Errorf("docs_by_kind: %v", err)
		}
		rows, err := s.DocsByKind(buildID, kind)
		if err != nil {
			return object.Errorf("docs_by_kind: %v", err)
		}
		return rowsToList(rows)
	})
}

// diff_builds(old_id, new_id) → []map{path, kind, change}
func makeDiffBuildsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("diff_builds", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("diff_builds", 2, len(args))
		}
		oldID, err := toString(args[0])
		if err != nil {
			return object.Errorf("diff_builds: %v", err)
		}
		newID, err := toString(args[1])
		if err != nil {
			return object.Errorf("diff_builds: %v", err)
		}
		changes, err := s.DiffBuilds(oldID, newID)
		if err != nil {
			return object.Errorf("diff_builds: %v", err)
		}
		results := []object.Object{}
		for _, c := range changes {
			results = append(results, object.NewMap(map[string]object.Object{
				"path":   object.NewString(c.Path),
				"kind":   object.NewString(c.Kind),
				"change": object.NewString(string(c.Change)),
			}))
		}
		return object.NewList(results)
	})
}

func rowsToList(rows []*store.DocRow) object.Object {
	results := make([]object.Object, 0, len(rows))
	for _, r := range rows {
		results = append(results, rowObject(r))
	}
	return object.NewList(results)
}

// db_query(sql, args...) → []map of column → value
//
// Only read statements (SELECT, or WITH ... SELECT) are accepted.
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) == 0 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got 0")
		}
		query, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		if !isReadQuery(query) {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}

		params := make([]any, 0, len(args)-1)
		for _, arg := range args[1:] {
			params = append(params, sqlParam(arg))
		}

		rows, err := s.DB().QueryContext(ctx, query, params...)
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		defer rows.Close()

		out, err := scanMaps(rows)
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		return object.NewList(out)
	})
}

func isReadQuery(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return true
	}
	return false
}

// sqlParam converts a Risor argument to a database/sql parameter.
func sqlParam(arg object.Object) any {
	switch v := arg.(type) {
	case *object.Int:
		return v.Value()
	case *object.Float:
		return v.Value()
	case *object.String:
		return v.Value()
	case *object.Bool:
		return v.Value()
	case *object.NilType:
		return nil
	}
	return arg.Inspect()
}

// scanMaps reads every row as a Risor map keyed by column name.
func scanMaps(rows *sql.Rows) ([]object.Object, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	out := []object.Object{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(map[string]object.Object, len(cols))
		for i, col := range cols {
			row[col] = sqlValueToObject(values[i])
		}
		out = append(out, object.NewMap(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// sqlValueToObject converts a database value to a Risor object.
func sqlValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	case time.Time:
		return object.NewString(val.UTC().Format(time.RFC3339))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

// --- Map extraction helpers ---

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func toString(obj object.Object) (string, error) {
	s, ok := obj.(*object.String)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", obj.Type())
	}
	return s.Value(), nil
}
