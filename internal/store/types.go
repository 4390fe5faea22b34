package store

import (
	"time"

	"github.com/jward/doctree/internal/model"
)

// Build is one saved doc tree.
type Build struct {
	ID           string
	CreatedAt    time.Time
	Root         string
	DocCount     int
	WarningCount int
}

// BuildFile is a source file that contributed to a build.
type BuildFile struct {
	ID       int64
	BuildID  string
	Path     string
	Language string
	Hash     string
	DocCount int
}

// DocRow is the flattened form of one tree-resident doc. Index is the
// doc's pre-order position in its build; ParentIndex is -1 for children
// of the root.
type DocRow struct {
	ID            int64
	BuildID       string
	Index         int
	ParentIndex   int
	Position      int
	Kind          string
	Name          string
	Path          string
	Brief         string
	Description   string
	Visibility    string
	Version       string
	Scope         string
	Object        string
	DataType      []string
	Alias         string
	OrgPath       string
	Params        []model.Param
	Returns       []model.Return
	Extends       []string
	Fires         []string
	Tags          []model.Tag
	File          string
	Line          int
	SignatureHash string
}

// ChangeKind classifies a DocChange.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeChanged ChangeKind = "changed"
)

// DocChange is one difference between two builds, keyed by doc path.
type DocChange struct {
	Path   string
	Kind   string
	Change ChangeKind
}
