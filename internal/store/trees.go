package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jward/doctree/internal/model"
)

// SaveTree stores every tree-resident doc of t as a new build within a
// single transaction. b.ID is assigned when empty, b.CreatedAt when zero,
// and b.DocCount always. files may be nil.
func (s *Store) SaveTree(t *model.Tree, b *Build, files []*BuildFile) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	rows := Rows(t)
	b.DocCount = len(rows)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save tree: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO builds (id, created_at, root, doc_count, warning_count) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.CreatedAt, b.Root, b.DocCount, b.WarningCount,
	); err != nil {
		return fmt.Errorf("save tree: insert build: %w", err)
	}

	for _, f := range files {
		f.BuildID = b.ID
		res, err := tx.Exec(
			"INSERT INTO build_files (build_id, path, language, hash, doc_count) VALUES (?, ?, ?, ?, ?)",
			f.BuildID, f.Path, f.Language, f.Hash, f.DocCount,
		)
		if err != nil {
			return fmt.Errorf("save tree: file %q: %w", f.Path, err)
		}
		if f.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("save tree: last insert id: %w", err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO docs (build_id, doc_index, parent_index, position, kind, name, path,
			brief, description, visibility, version, scope, object, data_type, alias, org_path,
			params, returns, extends, fires, tags, file, line, signature_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save tree: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		r.BuildID = b.ID
		res, err := stmt.Exec(
			r.BuildID, r.Index, r.ParentIndex, r.Position, r.Kind, r.Name, r.Path,
			r.Brief, r.Description, r.Visibility, r.Version, r.Scope, r.Object,
			marshalList(r.DataType), r.Alias, r.OrgPath,
			marshalList(r.Params), marshalList(r.Returns), marshalList(r.Extends),
			marshalList(r.Fires), marshalList(r.Tags), r.File, r.Line, r.SignatureHash,
		)
		if err != nil {
			return fmt.Errorf("save tree: doc %q: %w", r.Path, err)
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("save tree: last insert id: %w", err)
		}
	}
	return tx.Commit()
}

// Rows flattens the tree-resident docs of t in pre-order.
func Rows(t *model.Tree) []*DocRow {
	var rows []*DocRow
	index := make(map[model.DocID]int)
	positions := make(map[model.DocID]int)

	t.Walk(func(d *model.Doc, _ int) bool {
		r := &DocRow{
			Index:       len(rows),
			ParentIndex: -1,
			Position:    positions[d.Parent],
			Kind:        d.Kind.String(),
			Name:        d.Name,
			Path:        d.Path,
			Brief:       d.Brief,
			Description: d.Description,
			Visibility:  string(d.Visibility),
			Version:     string(d.Version),
			Fires:       d.Fires,
			Tags:        d.Tags,
			File:        d.Loc.File,
			Line:        d.Loc.Line,
		}
		positions[d.Parent]++
		if i, ok := index[d.Parent]; ok {
			r.ParentIndex = i
		}
		index[d.ID] = r.Index

		switch v := d.Detail.(type) {
		case *model.ClassDetail:
			r.Params = v.Params
			r.Extends = v.Extends
		case *model.FunctionDetail:
			r.Params = v.Params
			r.Returns = v.Returns
			r.Scope = string(v.Scope)
		case *model.PropertyDetail:
			r.Scope = string(v.Scope)
			r.Object = v.Object
			r.DataType = v.DataType
		case *model.TypedefDetail:
			r.Alias = v.Alias
			r.DataType = v.DataType
			if org := t.Get(v.Org); org != nil {
				r.OrgPath = org.Path
			}
		}
		r.SignatureHash = ComputeSignatureHash(r)
		rows = append(rows, r)
		return true
	})
	return rows
}

// LoadTree rebuilds the doc tree of a build. Returns (nil, nil) when the
// build does not exist.
func (s *Store) LoadTree(buildID string) (*model.Tree, error) {
	b, err := s.BuildByID(buildID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	rows, err := s.DocsByBuild(buildID)
	if err != nil {
		return nil, err
	}

	t := model.NewTree()
	byIndex := make(map[int]*model.Doc, len(rows))
	var typedefs []*model.Doc
	orgs := make(map[model.DocID]string)

	for _, r := range rows {
		kind, ok := model.ParseKind(r.Kind)
		if !ok {
			return nil, fmt.Errorf("load tree: doc %q: unknown kind %q", r.Path, r.Kind)
		}
		d := t.CreateDoc(r.Name, kind, model.Options{
			Visibility:  model.Visibility(r.Visibility),
			Version:     model.Version(r.Version),
			Scope:       model.Scope(r.Scope),
			Object:      r.Object,
			DataType:    r.DataType,
			Params:      r.Params,
			Returns:     r.Returns,
			Extends:     r.Extends,
			Alias:       r.Alias,
			Fires:       r.Fires,
			Brief:       r.Brief,
			Description: r.Description,
			Tags:        r.Tags,
			Loc:         model.Location{File: r.File, Line: r.Line},
		})
		parent := t.Root()
		if r.ParentIndex >= 0 {
			if parent, ok = byIndex[r.ParentIndex]; !ok {
				return nil, fmt.Errorf("load tree: doc %q: parent %d not loaded", r.Path, r.ParentIndex)
			}
		}
		if _, ok := t.AddChildDoc(d, parent); !ok {
			return nil, fmt.Errorf("load tree: doc %q: cannot attach", r.Path)
		}
		byIndex[r.Index] = d
		if r.OrgPath != "" {
			typedefs = append(typedefs, d)
			orgs[d.ID] = r.OrgPath
		}
	}

	for _, d := range typedefs {
		if org, ok := t.Doc(orgs[d.ID], t.Root()); ok {
			d.Typedef().Org = org.ID
		}
	}
	return t, nil
}

const docColumns = `id, build_id, doc_index, parent_index, position, kind, name, path,
	brief, description, visibility, version, scope, object, data_type, alias, org_path,
	params, returns, extends, fires, tags, file, line, signature_hash`

func scanDoc(scanner interface{ Scan(...any) error }) (*DocRow, error) {
	r := &DocRow{}
	var dataType, params, returns, extends, fires, tags string
	err := scanner.Scan(
		&r.ID, &r.BuildID, &r.Index, &r.ParentIndex, &r.Position, &r.Kind, &r.Name, &r.Path,
		&r.Brief, &r.Description, &r.Visibility, &r.Version, &r.Scope, &r.Object,
		&dataType, &r.Alias, &r.OrgPath, &params, &returns, &extends, &fires, &tags,
		&r.File, &r.Line, &r.SignatureHash,
	)
	if err != nil {
		return nil, err
	}
	r.DataType = unmarshalList[string](dataType)
	r.Params = unmarshalList[model.Param](params)
	r.Returns = unmarshalList[model.Return](returns)
	r.Extends = unmarshalList[string](extends)
	r.Fires = unmarshalList[string](fires)
	r.Tags = unmarshalList[model.Tag](tags)
	return r, nil
}

func (s *Store) queryDocs(query string, args ...any) ([]*DocRow, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []*DocRow
	for rows.Next() {
		r, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doc: %w", err)
		}
		docs = append(docs, r)
	}
	return docs, rows.Err()
}

// DocsByBuild returns every doc of a build in pre-order.
func (s *Store) DocsByBuild(buildID string) ([]*DocRow, error) {
	docs, err := s.queryDocs("SELECT "+docColumns+" FROM docs WHERE build_id = ? ORDER BY doc_index", buildID)
	if err != nil {
		return nil, fmt.Errorf("docs by build: %w", err)
	}
	return docs, nil
}

// DocByPath returns the doc at path in a build. Both "." and "#" separate
// path segments. Returns (nil, nil) when no doc has the path.
func (s *Store) DocByPath(buildID, path string) (*DocRow, error) {
	r, err := scanDoc(s.db.QueryRow(
		"SELECT "+docColumns+" FROM docs WHERE build_id = ? AND path = ?", buildID, normalizePath(path),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doc by path: %w", err)
	}
	return r, nil
}

// DocChildren returns the children of the doc at index in child order. An
// index of -1 selects the children of the root.
func (s *Store) DocChildren(buildID string, index int) ([]*DocRow, error) {
	docs, err := s.queryDocs(
		"SELECT "+docColumns+" FROM docs WHERE build_id = ? AND parent_index = ? ORDER BY position",
		buildID, index,
	)
	if err != nil {
		return nil, fmt.Errorf("doc children: %w", err)
	}
	return docs, nil
}

// DocsByKind returns every doc of the given kind name in a build.
func (s *Store) DocsByKind(buildID, kind string) ([]*DocRow, error) {
	docs, err := s.queryDocs(
		"SELECT "+docColumns+" FROM docs WHERE build_id = ? AND kind = ? ORDER BY doc_index",
		buildID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("docs by kind: %w", err)
	}
	return docs, nil
}

func scanBuild(scanner interface{ Scan(...any) error }) (*Build, error) {
	b := &Build{}
	var root sql.NullString
	if err := scanner.Scan(&b.ID, &b.CreatedAt, &root, &b.DocCount, &b.WarningCount); err != nil {
		return nil, err
	}
	b.Root = root.String
	return b, nil
}

// BuildByID returns a build, or (nil, nil) when it does not exist.
func (s *Store) BuildByID(id string) (*Build, error) {
	b, err := scanBuild(s.db.QueryRow(
		"SELECT id, created_at, root, doc_count, warning_count FROM builds WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build by id: %w", err)
	}
	return b, nil
}

// Builds returns every build, newest first.
func (s *Store) Builds() ([]*Build, error) {
	rows, err := s.db.Query(
		"SELECT id, created_at, root, doc_count, warning_count FROM builds ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("builds: %w", err)
	}
	defer rows.Close()
	var builds []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// LatestBuild returns the newest build, or (nil, nil) when there is none.
func (s *Store) LatestBuild() (*Build, error) {
	b, err := scanBuild(s.db.QueryRow(
		"SELECT id, created_at, root, doc_count, warning_count FROM builds ORDER BY created_at DESC, rowid DESC LIMIT 1",
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest build: %w", err)
	}
	return b, nil
}

// BuildFiles returns the source files of a build in insertion order.
func (s *Store) BuildFiles(buildID string) ([]*BuildFile, error) {
	rows, err := s.db.Query(
		"SELECT id, build_id, path, language, hash, doc_count FROM build_files WHERE build_id = ? ORDER BY id",
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("build files: %w", err)
	}
	defer rows.Close()
	var files []*BuildFile
	for rows.Next() {
		f := &BuildFile{}
		if err := rows.Scan(&f.ID, &f.BuildID, &f.Path, &f.Language, &f.Hash, &f.DocCount); err != nil {
			return nil, fmt.Errorf("scan build file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DiffBuilds compares two builds by doc path and signature hash. Changes
// are ordered by path.
func (s *Store) DiffBuilds(oldID, newID string) ([]DocChange, error) {
	rows, err := s.db.Query(`
		SELECT n.path, n.kind, CASE WHEN o.id IS NULL THEN 'added' ELSE 'changed' END
		FROM docs n LEFT JOIN docs o ON o.build_id = ? AND o.path = n.path
		WHERE n.build_id = ? AND (o.id IS NULL OR o.signature_hash != n.signature_hash)
		UNION ALL
		SELECT o.path, o.kind, 'removed'
		FROM docs o LEFT JOIN docs n ON n.build_id = ? AND n.path = o.path
		WHERE o.build_id = ? AND n.id IS NULL
		ORDER BY 1`,
		oldID, newID, newID, oldID,
	)
	if err != nil {
		return nil, fmt.Errorf("diff builds: %w", err)
	}
	defer rows.Close()
	var changes []DocChange
	for rows.Next() {
		var c DocChange
		var change string
		if err := rows.Scan(&c.Path, &c.Kind, &change); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.Change = ChangeKind(change)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
