package tags

import (
	"strings"

	"github.com/jward/doctree/internal/model"
)

// appendCopy appends without writing into the backing array of the
// caller's slice, keeping handlers free of side effects.
func appendCopy[T any](s []T, v ...T) []T {
	return append(s[:len(s):len(s)], v...)
}

func parseAccess(value string, o model.Options) model.Options {
	switch v := model.Visibility(strings.TrimSpace(value)); v {
	case model.VisibilityPublic, model.VisibilityProtected, model.VisibilityPrivate:
		o.Visibility = v
	}
	return o
}

func parsePublic(_ string, o model.Options) model.Options {
	o.Visibility = model.VisibilityPublic
	return o
}

func parseProtected(_ string, o model.Options) model.Options {
	o.Visibility = model.VisibilityProtected
	return o
}

func parsePrivate(_ string, o model.Options) model.Options {
	o.Visibility = model.VisibilityPrivate
	return o
}

// parseParamValue reads "{Type} [name=default] - description".
func parseParamValue(value string) model.Param {
	var p model.Param
	expr, rest, ok := splitType(value)
	if ok {
		if trimmed, optional := strings.CutSuffix(expr, "="); optional {
			expr = trimmed
			p.Optional = true
		}
		p.DataType = dataTypes(expr)
	}

	name, desc := splitWord(rest)
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		p.Optional = true
		name = strings.TrimSpace(name[1 : len(name)-1])
		if n, def, found := strings.Cut(name, "="); found {
			name = strings.TrimSpace(n)
			p.Default = strings.TrimSpace(def)
		}
	}
	p.Name = name
	p.Description = trimDash(desc)
	return p
}

func parseParam(value string, o model.Options) model.Options {
	o.Params = appendCopy(o.Params, parseParamValue(value))
	return o
}

func parseProperty(value string, o model.Options) model.Options {
	o.Properties = appendCopy(o.Properties, parseParamValue(value))
	return o
}

func parseReturn(value string, o model.Options) model.Options {
	var r model.Return
	expr, rest, ok := splitType(value)
	if ok {
		r.DataType = dataTypes(expr)
	}
	r.Description = trimDash(rest)
	o.Returns = []model.Return{r}
	return o
}

func parseScope(value string, o model.Options) model.Options {
	if v := strings.TrimSpace(value); v != "" {
		o.Scope = model.Scope(v)
	}
	return o
}

func parseStatic(_ string, o model.Options) model.Options {
	o.Scope = model.ScopeStatic
	return o
}

func parseInstance(_ string, o model.Options) model.Options {
	o.Scope = model.ScopeInstance
	return o
}

func parseInner(_ string, o model.Options) model.Options {
	o.Scope = model.ScopeInner
	return o
}

// parseTypedef reads "{Type} Name".
func parseTypedef(value string, o model.Options) model.Options {
	o.Kind = model.KindTypedef
	expr, rest, ok := splitType(value)
	if ok {
		o.Alias = expr
		o.DataType = dataTypes(expr)
	}
	if name, _ := splitWord(rest); name != "" {
		o.Name = name
	}
	return o
}

// parseMember reads "{Type} [Name]". The name is optional; without it the
// node shape decides.
func parseMember(value string, o model.Options) model.Options {
	o.Kind = model.KindProperty
	expr, rest, ok := splitType(value)
	if ok {
		o.DataType = dataTypes(expr)
	}
	if name, _ := splitWord(rest); name != "" {
		o.Name = name
	}
	return o
}

func parseType(value string, o model.Options) model.Options {
	expr, rest, ok := splitType(value)
	if !ok {
		expr = rest
	}
	if dt := dataTypes(expr); len(dt) > 0 {
		o.DataType = dt
	}
	return o
}

func parseMemberOf(value string, o model.Options) model.Options {
	v, _ := splitWord(value)
	if v = strings.TrimRight(v, ".#"); v != "" {
		o.MemberOf = v
	}
	return o
}

// parseEvent reads "[Owner#]name". An owner prefix places the event the
// way @memberof would.
func parseEvent(value string, o model.Options) model.Options {
	o.Kind = model.KindEvent
	name, _ := splitWord(value)
	if i := strings.LastIndexAny(name, ".#"); i >= 0 {
		if owner := name[:i]; owner != "" {
			o.MemberOf = owner
		}
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "event:")
	if name != "" {
		o.Name = name
	}
	return o
}

func parseFires(value string, o model.Options) model.Options {
	if name, _ := splitWord(value); name != "" {
		o.Fires = appendCopy(o.Fires, name)
	}
	return o
}

// kindTag builds the handler of a tag that selects the doc kind and takes
// an optional name.
func kindTag(kind model.Kind) Handler {
	return func(value string, o model.Options) model.Options {
		o.Kind = kind
		if name, _ := splitWord(value); name != "" && !strings.HasPrefix(name, "{") {
			o.Name = name
		}
		return o
	}
}

func parseExtends(value string, o model.Options) model.Options {
	expr, rest, ok := splitType(value)
	if !ok {
		expr, _ = splitWord(rest)
	}
	if expr != "" {
		o.Extends = appendCopy(o.Extends, expr)
	}
	return o
}

func versionTag(v model.Version) Handler {
	return func(_ string, o model.Options) model.Options {
		o.Version = v
		return o
	}
}

func parseDescription(value string, o model.Options) model.Options {
	if v := strings.TrimSpace(value); v != "" {
		o.Description = v
	}
	return o
}

func parseSummary(value string, o model.Options) model.Options {
	if v := strings.TrimSpace(value); v != "" {
		o.Brief = v
	}
	return o
}
