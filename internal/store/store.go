package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for saved doc trees.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS builds (
  id              TEXT PRIMARY KEY,
  created_at      TIMESTAMP NOT NULL,
  root            TEXT,
  doc_count       INTEGER NOT NULL DEFAULT 0,
  warning_count   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS build_files (
  id              INTEGER PRIMARY KEY,
  build_id        TEXT NOT NULL REFERENCES builds(id),
  path            TEXT NOT NULL,
  language        TEXT NOT NULL,
  hash            TEXT,
  doc_count       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS docs (
  id              INTEGER PRIMARY KEY,
  build_id        TEXT NOT NULL REFERENCES builds(id),
  doc_index       INTEGER NOT NULL,
  parent_index    INTEGER NOT NULL,
  position        INTEGER NOT NULL,
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL,
  path            TEXT NOT NULL,
  brief           TEXT,
  description     TEXT,
  visibility      TEXT,
  version         TEXT,
  scope           TEXT,
  object          TEXT,
  data_type       TEXT,
  alias           TEXT,
  org_path        TEXT,
  params          TEXT,
  returns         TEXT,
  extends         TEXT,
  fires           TEXT,
  tags            TEXT,
  file            TEXT,
  line            INTEGER,
  signature_hash  TEXT,
  UNIQUE (build_id, doc_index)
);

CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at);
CREATE INDEX IF NOT EXISTS idx_build_files_build ON build_files(build_id);
CREATE INDEX IF NOT EXISTS idx_docs_build_path ON docs(build_id, path);
CREATE INDEX IF NOT EXISTS idx_docs_build_parent ON docs(build_id, parent_index);
CREATE INDEX IF NOT EXISTS idx_docs_kind ON docs(kind);
`

// DeleteBuild transactionally removes a build with its files and docs.
// Deletes in reverse-dependency order to respect FK constraints.
func (s *Store) DeleteBuild(buildID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM docs WHERE build_id = ?",
		"DELETE FROM build_files WHERE build_id = ?",
		"DELETE FROM builds WHERE id = ?",
	} {
		if _, err := tx.Exec(q, buildID); err != nil {
			return fmt.Errorf("delete build %s: %w", buildID, err)
		}
	}
	return tx.Commit()
}

// PruneBuilds deletes all but the newest keep builds and returns how many
// were removed.
func (s *Store) PruneBuilds(keep int) (int, error) {
	builds, err := s.Builds()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(builds) <= keep {
		return 0, nil
	}
	removed := 0
	for _, b := range builds[keep:] {
		if err := s.DeleteBuild(b.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
