// Package tags maps documentation tag names to the handlers that turn tag
// values into doc-creation options.
package tags

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jward/doctree/internal/model"
)

// Handler folds one tag value into the accumulated options and returns the
// result. Handlers never modify the options they are given.
type Handler func(value string, opts model.Options) model.Options

// Registry is a read-only mapping from tag name to Handler.
type Registry struct {
	handlers map[string]Handler
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry of built-in tags.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = &Registry{handlers: map[string]Handler{
			"access":    parseAccess,
			"public":    parsePublic,
			"protected": parseProtected,
			"private":   parsePrivate,

			"param":    parseParam,
			"arg":      parseParam,
			"argument": parseParam,
			"return":   parseReturn,
			"returns":  parseReturn,

			"scope":    parseScope,
			"static":   parseStatic,
			"instance": parseInstance,
			"inner":    parseInner,

			"typedef":  parseTypedef,
			"member":   parseMember,
			"var":      parseMember,
			"memberof": parseMemberOf,
			"type":     parseType,
			"property": parseProperty,
			"prop":     parseProperty,

			"event": parseEvent,
			"fires": parseFires,
			"emits": parseFires,

			"class":       kindTag(model.KindClass),
			"constructor": kindTag(model.KindClass),
			"function":    kindTag(model.KindFunction),
			"func":        kindTag(model.KindFunction),
			"method":      kindTag(model.KindMethod),
			"namespace":   kindTag(model.KindObject),
			"object":      kindTag(model.KindObject),
			"extends":     parseExtends,
			"augments":    parseExtends,

			"deprecated": versionTag(model.VersionDeprecated),
			"alpha":      versionTag(model.VersionAlpha),
			"beta":       versionTag(model.VersionBeta),
			"internal":   versionTag(model.VersionInternal),

			"description": parseDescription,
			"desc":        parseDescription,
			"summary":     parseSummary,
			"brief":       parseSummary,
		}}
	})
	return defaultRegistry
}

// WithAliases returns a new registry in which each alias dispatches to the
// handler of its target tag. The receiver is not modified.
func (r *Registry) WithAliases(aliases map[string]string) (*Registry, error) {
	handlers := make(map[string]Handler, len(r.handlers)+len(aliases))
	for name, h := range r.handlers {
		handlers[name] = h
	}
	for alias, target := range aliases {
		h, ok := r.handlers[target]
		if !ok {
			return nil, fmt.Errorf("tags: alias %q targets unknown tag %q", alias, target)
		}
		handlers[alias] = h
	}
	return &Registry{handlers: handlers}, nil
}

// Lookup returns the handler registered for name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered tag names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Apply runs the handlers of tags in order. Every tag, recognized or not,
// is appended verbatim to opts.Tags.
func (r *Registry) Apply(tags []model.Tag, opts model.Options) model.Options {
	for _, tag := range tags {
		if h, ok := r.handlers[tag.Name]; ok {
			opts = h(tag.Value, opts)
		}
		opts.Tags = appendCopy(opts.Tags, tag)
	}
	return opts
}
