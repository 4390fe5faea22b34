package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// ComputeSignatureHash computes a deterministic hash from a doc's semantic
// identity: name, kind, visibility, version, scope, data types, params,
// returns and extends. Location and prose changes do NOT affect the hash.
func ComputeSignatureHash(row *DocRow) string {
	h := sha256.New()

	fmt.Fprintf(h, "name:%s\n", row.Name)
	fmt.Fprintf(h, "kind:%s\n", row.Kind)
	fmt.Fprintf(h, "visibility:%s\n", row.Visibility)
	fmt.Fprintf(h, "version:%s\n", row.Version)
	fmt.Fprintf(h, "scope:%s\n", row.Scope)
	fmt.Fprintf(h, "alias:%s\n", row.Alias)

	// Union members are unordered.
	types := make([]string, len(row.DataType))
	copy(types, row.DataType)
	sort.Strings(types)
	fmt.Fprintf(h, "type:%s\n", strings.Join(types, "|"))

	// Params keep their order; position is part of the signature.
	for i, p := range row.Params {
		fmt.Fprintf(h, "param:%d:%s:%s:%v\n", i, p.Name, strings.Join(p.DataType, "|"), p.Optional)
	}
	for i, r := range row.Returns {
		fmt.Fprintf(h, "return:%d:%s\n", i, strings.Join(r.DataType, "|"))
	}

	extends := make([]string, len(row.Extends))
	copy(extends, row.Extends)
	sort.Strings(extends)
	fmt.Fprintf(h, "extends:%s\n", strings.Join(extends, ","))

	return fmt.Sprintf("%x", h.Sum(nil))
}

// ContentHash returns the hex SHA-256 of a source file.
func ContentHash(src []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(src))
}
