package model

// Kind discriminates the Doc variants.
type Kind uint8

const (
	// KindNone is the zero value; no tree-resident Doc ever carries it. In
	// Options it means "not selected by any tag".
	KindNone Kind = iota
	KindRoot
	KindClass
	KindFunction
	KindMethod
	KindObject
	KindProperty
	KindTypedef
	KindEvent
)

var kindNames = [...]string{
	KindNone:     "",
	KindRoot:     "RootDoc",
	KindClass:    "ClassDoc",
	KindFunction: "FunctionDoc",
	KindMethod:   "MethodDoc",
	KindObject:   "ObjectDoc",
	KindProperty: "PropertyDoc",
	KindTypedef:  "TypedefDoc",
	KindEvent:    "EventDoc",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UnknownDoc"
}

// ParseKind is the inverse of Kind.String. Returns (KindNone, false) for
// unknown names.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name != "" && name == s {
			return Kind(i), true
		}
	}
	return KindNone, false
}

// Visibility is the access level of a documented symbol.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Version is the release stage of a documented symbol.
type Version string

const (
	VersionAlpha      Version = "alpha"
	VersionBeta       Version = "beta"
	VersionInternal   Version = "internal"
	VersionPublic     Version = "public"
	VersionDeprecated Version = "deprecated"
)

// Scope says which side of its owner a member lives on. Besides the named
// constants any free-form string set by an explicit @scope tag is allowed.
type Scope string

const (
	ScopeStatic   Scope = "static"
	ScopeInstance Scope = "instance"
	ScopeInner    Scope = "inner"
)
