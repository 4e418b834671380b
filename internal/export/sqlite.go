// Package export writes vocabulary statistics into a SQLite database for ad-hoc
// exploration with SQL.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sha1n/eml-vocab/internal/domain"
	_ "modernc.org/sqlite"
)

// Result summarizes one export.
type Result struct {
	RunID  string
	Tags   int
	Values int
}

// Open opens the SQLite database at path and creates the export schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	selector TEXT NOT NULL,
	corpus_root TEXT,
	extension TEXT,
	generated_at TEXT,
	max_vocabulary INTEGER,
	documents_processed INTEGER,
	documents_failed INTEGER,
	blocked_tags TEXT
);

CREATE TABLE IF NOT EXISTS tag_stats (
	run_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	position INTEGER NOT NULL,
	occurrence_count INTEGER NOT NULL,
	unique_count INTEGER NOT NULL,
	PRIMARY KEY(run_id, tag),
	FOREIGN KEY(run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tag_values (
	run_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, tag, position),
	FOREIGN KEY(run_id, tag) REFERENCES tag_stats(run_id, tag) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tag_values_text ON tag_values(text);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// WriteSQLite exports stats into the database at path. A database may hold
// several runs; exporting a run again replaces its previous rows.
func WriteSQLite(ctx context.Context, stats *domain.CorpusStats, path string) (*Result, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	md := stats.Metadata
	runID := md.RunID
	if runID == "" {
		runID = ulid.Make().String()
	}

	blocked, err := json.Marshal(md.BlockedTags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blocked tags: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"tag_values", "tag_stats", "runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return nil, fmt.Errorf("failed to replace run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (run_id, selector, corpus_root, extension, generated_at, max_vocabulary,
	documents_processed, documents_failed, blocked_tags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, md.Selector, md.CorpusRoot, md.Extension, md.GeneratedAt.UTC().Format(time.RFC3339),
		md.MaxVocabulary, md.DocumentsProcessed, md.DocumentsFailed, string(blocked))
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	tagStmt, err := tx.PrepareContext(ctx, `
INSERT INTO tag_stats (run_id, tag, position, occurrence_count, unique_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tagStmt.Close() }()

	valueStmt, err := tx.PrepareContext(ctx, `
INSERT INTO tag_values (run_id, tag, position, text, count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = valueStmt.Close() }()

	res := &Result{RunID: runID}
	for i, t := range stats.Tags {
		if _, err := tagStmt.ExecContext(ctx, runID, t.Tag, i, t.OccurrenceCount(), t.UniqueCount()); err != nil {
			return nil, fmt.Errorf("failed to insert tag %s: %w", t.Tag, err)
		}
		res.Tags++

		for j, v := range t.Values {
			if _, err := valueStmt.ExecContext(ctx, runID, t.Tag, j, v.Text, v.Count); err != nil {
				return nil, fmt.Errorf("failed to insert value of %s: %w", t.Tag, err)
			}
			res.Values++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit export: %w", err)
	}
	return res, nil
}
