// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists concepts in SQLite and builds an FTS5 full-text
// index over them. Ingest is incremental: files whose modification time is
// unchanged since the last run are skipped.
//
// FTS5 requires building with the sqlite_fts5 tag.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/concepts/internal/logger"
	"github.com/pdiddy/concepts/pkg/types"
)

const dbFile = "concepts.db"

// Store manages the concepts SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	log        *logger.Logger
}

// NewStore opens or creates the database at cfg.Dir/concepts.db and creates
// the schema if it does not exist.
func NewStore(cfg types.IndexConfig, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
		log:        logger.OrNop(log).With("component", "index"),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS concepts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			keywords TEXT,
			body TEXT,
			path TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_concepts_category ON concepts(category)`,
		`CREATE INDEX IF NOT EXISTS idx_concepts_path ON concepts(path)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='concepts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE concepts_fts USING fts5(
				title, description, keywords, body,
				content=concepts, content_rowid=rowid
			)`,
			`CREATE TRIGGER concepts_ai AFTER INSERT ON concepts BEGIN
				INSERT INTO concepts_fts(rowid, title, description, keywords, body)
				VALUES (new.rowid, new.title, new.description, new.keywords, new.body);
			END`,
			`CREATE TRIGGER concepts_ad AFTER DELETE ON concepts BEGIN
				INSERT INTO concepts_fts(concepts_fts, rowid, title, description, keywords, body)
				VALUES ('delete', old.rowid, old.title, old.description, old.keywords, old.body);
			END`,
			`CREATE TRIGGER concepts_au AFTER UPDATE ON concepts BEGIN
				INSERT INTO concepts_fts(concepts_fts, rowid, title, description, keywords, body)
				VALUES ('delete', old.rowid, old.title, old.description, old.keywords, old.body);
				INSERT INTO concepts_fts(rowid, title, description, keywords, body)
				VALUES (new.rowid, new.title, new.description, new.keywords, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of concepts processed, not counting removals.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Changed reports whether the run modified the index.
func (s IngestSummary) Changed() bool {
	return s.Indexed > 0 || s.Updated > 0 || s.Removed > 0
}

// Ingest brings the index in line with concepts. New concepts are indexed,
// concepts whose source file changed are re-indexed, unchanged ones are
// skipped, and indexed concepts whose source file is gone are removed.
// Progress lines are written to w.
func (s *Store) Ingest(ctx context.Context, concepts []types.Concept, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary
	present := make(map[string]bool, len(concepts))

	for _, c := range concepts {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		present[c.Path] = true
		modTime := c.ModTime.UTC().Format(time.RFC3339Nano)

		// Check whether the file has changed since last indexing.
		var storedModTime string
		err := s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE path = ?`, c.Path,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped  %s\n", c.Slug)
			summary.Skipped++
			continue
		}
		if err != nil && err != sql.ErrNoRows {
			fmt.Fprintf(w, "failed   %s: %v\n", c.Slug, err)
			summary.Failed++
			continue
		}

		isUpdate := err == nil
		if err := s.ingestConcept(ctx, c, modTime); err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", c.Slug, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated  %s\n", c.Slug)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed  %s\n", c.Slug)
			summary.Indexed++
		}
	}

	removed, err := s.removeMissing(ctx, present, w)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)
	s.log.Info("ingest finished",
		"indexed", summary.Indexed, "updated", summary.Updated,
		"skipped", summary.Skipped, "removed", summary.Removed, "failed", summary.Failed)

	return summary, nil
}

func (s *Store) ingestConcept(ctx context.Context, c types.Concept, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// A renamed file keeps its path row but may change slug; clear both.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM concepts WHERE path = ? OR slug = ?`, c.Path, c.Slug,
	); err != nil {
		return fmt.Errorf("deleting old concept: %w", err)
	}

	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords of %s: %w", c.Slug, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO concepts (slug, category, title, description, keywords, body, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Slug, c.Category, c.Title, c.Description, string(keywordsJSON), c.Body, c.Path,
	); err != nil {
		return fmt.Errorf("inserting concept %s: %w", c.Slug, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indexing_status (path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		c.Path, modTime,
	); err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// removeMissing deletes concepts whose source path is not in present.
func (s *Store) removeMissing(ctx context.Context, present map[string]bool, w io.Writer) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM indexing_status`)
	if err != nil {
		return 0, fmt.Errorf("listing indexed paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning indexed path: %w", err)
		}
		if !present[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range stale {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("beginning transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM concepts WHERE path = ?`, path); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("removing %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM indexing_status WHERE path = ?`, path); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("removing status for %s: %w", path, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("committing removal of %s: %w", path, err)
		}
		fmt.Fprintf(w, "removed  %s\n", path)
	}
	return len(stale), nil
}

// Len returns the number of indexed concepts.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM concepts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting concepts: %w", err)
	}
	return n, nil
}
