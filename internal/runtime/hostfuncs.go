package runtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/store"
)

// makeSplitPathFn creates the "split_path" host function.
//
// split_path(path) → []string
func makeSplitPathFn() *object.Builtin {
	return object.NewBuiltin("split_path", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("split_path", 1, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("split_path: %v", err)
		}
		return stringList(model.SplitPath(path))
	})
}

// makeJoinPathFn creates the "join_path" host function.
//
// join_path(segments) → string
func makeJoinPathFn() *object.Builtin {
	return object.NewBuiltin("join_path", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("join_path", 1, len(args))
		}
		list, ok := args[0].(*object.List)
		if !ok {
			return object.Errorf("join_path: expected list, got %s", args[0].Type())
		}
		parts := make([]string, 0, len(list.Value()))
		for _, item := range list.Value() {
			s, err := toString(item)
			if err != nil {
				return object.Errorf("join_path: %v", err)
			}
			parts = append(parts, s)
		}
		return object.NewString(strings.Join(parts, "."))
	})
}

// makeHasTagFn creates the "has_tag" host function.
//
// has_tag(doc, name) → bool
func makeHasTagFn() *object.Builtin {
	return object.NewBuiltin("has_tag", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("has_tag", 2, len(args))
		}
		doc, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("has_tag: %v", err)
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("has_tag: %v", err)
		}
		tags, ok := doc["tags"].(*object.List)
		if !ok {
			return object.NewBool(false)
		}
		for _, item := range tags.Value() {
			tag, ok := item.(*object.Map)
			if !ok {
				continue
			}
			if getString(tag.Value(), "name") == name {
				return object.NewBool(true)
			}
		}
		return object.NewBool(false)
	})
}

// DocObject converts a tree-resident doc to the map scripts see as "doc".
func DocObject(t *model.Tree, d *model.Doc, depth int) object.Object {
	m := map[string]object.Object{
		"name":        object.NewString(d.Name),
		"path":        object.NewString(d.Path),
		"kind":        object.NewString(d.Kind.String()),
		"brief":       object.NewString(d.Brief),
		"description": object.NewString(d.Description),
		"visibility":  object.NewString(string(d.Visibility)),
		"version":     object.NewString(string(d.Version)),
		"fires":       stringList(d.Fires),
		"tags":        tagList(d.Tags),
		"file":        object.NewString(d.Loc.File),
		"line":        object.NewInt(int64(d.Loc.Line)),
		"depth":       object.NewInt(int64(depth)),
		"children":    object.NewInt(int64(len(d.Children))),
		"scope":       object.NewString(""),
		"data_type":   stringList(nil),
		"params":      stringList(nil),
	}
	if p := t.Parent(d); p != nil {
		m["parent"] = object.NewString(p.Path)
	}
	switch v := d.Detail.(type) {
	case *model.ClassDetail:
		m["params"] = paramNames(v.Params)
		m["extends"] = stringList(v.Extends)
	case *model.FunctionDetail:
		m["params"] = paramNames(v.Params)
		m["scope"] = object.NewString(string(v.Scope))
	case *model.PropertyDetail:
		m["scope"] = object.NewString(string(v.Scope))
		m["object"] = object.NewString(v.Object)
		m["data_type"] = stringList(v.DataType)
	case *model.TypedefDetail:
		m["alias"] = object.NewString(v.Alias)
		m["data_type"] = stringList(v.DataType)
	}
	return object.NewMap(m)
}

// rowObject converts a stored doc row to a Risor map with the same keys as
// DocObject where the row carries them.
func rowObject(r *store.DocRow) object.Object {
	return object.NewMap(map[string]object.Object{
		"index":          object.NewInt(int64(r.Index)),
		"parent_index":   object.NewInt(int64(r.ParentIndex)),
		"name":           object.NewString(r.Name),
		"path":           object.NewString(r.Path),
		"kind":           object.NewString(r.Kind),
		"brief":          object.NewString(r.Brief),
		"description":    object.NewString(r.Description),
		"visibility":     object.NewString(r.Visibility),
		"version":        object.NewString(r.Version),
		"scope":          object.NewString(r.Scope),
		"data_type":      stringList(r.DataType),
		"params":         paramNames(r.Params),
		"fires":          stringList(r.Fires),
		"tags":           tagList(r.Tags),
		"file":           object.NewString(r.File),
		"line":           object.NewInt(int64(r.Line)),
		"signature_hash": object.NewString(r.SignatureHash),
	})
}

func stringList(items []string) *object.List {
	out := make([]object.Object, 0, len(items))
	for _, s := range items {
		out = append(out, object.NewString(s))
	}
	return object.NewList(out)
}

func tagList(tags []model.Tag) *object.List {
	out := make([]object.Object, 0, len(tags))
	for _, t := range tags {
		out = append(out, object.NewMap(map[string]object.Object{
			"name":  object.NewString(t.Name),
			"value": object.NewString(t.Value),
		}))
	}
	return object.NewList(out)
}

func paramNames(params []model.Param) *object.List {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return stringList(names)
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script")
}
