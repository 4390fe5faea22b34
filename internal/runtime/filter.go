package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jward/doctree/internal/model"
)

// Filter is a Risor expression evaluated once per doc with the doc bound
// to the global "doc". A doc matches when the expression's value is
// truthy.
type Filter struct {
	expr string
	rt   *Runtime
}

// NewFilter returns a filter for expr evaluated by rt. A nil rt gets a
// Runtime without store access.
func NewFilter(expr string, rt *Runtime) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("runtime: empty filter expression")
	}
	if rt == nil {
		rt = NewRuntime(nil, "")
	}
	return &Filter{expr: expr, rt: rt}, nil
}

// String returns the filter expression.
func (f *Filter) String() string {
	return f.expr
}

// Match reports whether d, found at depth in t, satisfies the filter.
func (f *Filter) Match(ctx context.Context, t *model.Tree, d *model.Doc, depth int) (bool, error) {
	result, err := f.rt.Eval(ctx, f.expr, map[string]any{
		"doc": DocObject(t, d, depth),
	})
	if err != nil {
		return false, fmt.Errorf("runtime: filter %q on %s: %w", f.expr, d.Path, err)
	}
	return result.IsTruthy(), nil
}

// Prune detaches every doc that does not match f, together with its
// subtree. Matching docs below a non-matching doc go with it. Returns the
// number of docs detached directly.
func Prune(ctx context.Context, t *model.Tree, f *Filter) (int, error) {
	var (
		drop []*model.Doc
		err  error
	)
	t.Walk(func(d *model.Doc, depth int) bool {
		if err != nil {
			return false
		}
		ok, matchErr := f.Match(ctx, t, d, depth)
		if matchErr != nil {
			err = matchErr
			return false
		}
		if !ok {
			drop = append(drop, d)
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	for _, d := range drop {
		t.DetachDoc(d)
	}
	return len(drop), nil
}
