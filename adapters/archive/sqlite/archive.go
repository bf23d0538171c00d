// Package sqlite persists finalized significance reports in an embedded
// sqlite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"gridsig/domain/core"
	"gridsig/domain/report"
	apperrors "gridsig/internal/errors"
	"gridsig/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	run_id     TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	n_tests    INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	document   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

// Archive implements ports.ReportArchive over a local sqlite file.
type Archive struct {
	db *sqlx.DB
}

// Open connects to (and if needed initializes) the archive at dsn.
func Open(dsn string) (*Archive, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, apperrors.ArchiveError("failed to open report archive", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.ArchiveError("failed to initialize archive schema", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores a finalized report document, replacing any previous document
// for the same run.
func (a *Archive) Save(ctx context.Context, doc report.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return apperrors.ArchiveError("failed to encode report document", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (run_id, title, n_tests, created_at, document)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.RunID.String(), doc.Title, doc.NTests, doc.Timestamp.UTC().Format(time.RFC3339), string(payload))
	if err != nil {
		return apperrors.ArchiveError("failed to store report", err)
	}
	return nil
}

// Get retrieves a stored document by run ID.
func (a *Archive) Get(ctx context.Context, runID core.RunID) (report.Document, error) {
	var payload string
	err := a.db.GetContext(ctx, &payload,
		`SELECT document FROM reports WHERE run_id = ?`, runID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return report.Document{}, core.NewRunNotFoundError(runID.String())
	}
	if err != nil {
		return report.Document{}, apperrors.ArchiveError("failed to load report", err)
	}
	var doc report.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return report.Document{}, apperrors.ArchiveError("failed to decode stored report", err)
	}
	return doc, nil
}

// List returns stored run summaries, newest first.
func (a *Archive) List(ctx context.Context) ([]ports.ArchiveEntry, error) {
	rows := []struct {
		RunID     string `db:"run_id"`
		Title     string `db:"title"`
		NTests    int    `db:"n_tests"`
		CreatedAt string `db:"created_at"`
	}{}
	err := a.db.SelectContext(ctx, &rows,
		`SELECT run_id, title, n_tests, created_at FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.ArchiveError("failed to list reports", err)
	}
	entries := make([]ports.ArchiveEntry, len(rows))
	for i, r := range rows {
		entries[i] = ports.ArchiveEntry{
			RunID:     core.RunID(r.RunID),
			Title:     r.Title,
			NTests:    r.NTests,
			CreatedAt: r.CreatedAt,
		}
	}
	return entries, nil
}
