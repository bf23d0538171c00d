package ports

import (
	"context"

	"gridsig/domain/core"
	"gridsig/domain/report"
)

// ReportArchive persists finalized significance reports for later retrieval.
type ReportArchive interface {
	// Save stores a finalized report document, keyed by its run ID.
	Save(ctx context.Context, doc report.Document) error

	// Get retrieves a stored document by run ID.
	// Returns core.ErrRunNotFound if no such run exists.
	Get(ctx context.Context, runID core.RunID) (report.Document, error)

	// List returns stored run summaries, newest first.
	List(ctx context.Context) ([]ArchiveEntry, error)
}

// ArchiveEntry is a lightweight listing row for stored reports.
type ArchiveEntry struct {
	RunID     core.RunID `json:"run_id"`
	Title     string     `json:"title"`
	NTests    int        `json:"n_tests"`
	CreatedAt string     `json:"created_at"`
}
