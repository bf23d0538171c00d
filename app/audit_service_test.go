package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gridsig/domain/core"
	"gridsig/domain/grid"
	"gridsig/domain/report"
	"gridsig/domain/scan"
	"gridsig/internal/controls"
	"gridsig/internal/scanner"
	"gridsig/internal/testkit"
	"gridsig/ports"
)

type recordingArchive struct {
	saved []report.Document
}

func (a *recordingArchive) Save(_ context.Context, doc report.Document) error {
	a.saved = append(a.saved, doc)
	return nil
}

func (a *recordingArchive) Get(_ context.Context, runID core.RunID) (report.Document, error) {
	for _, doc := range a.saved {
		if doc.RunID == runID {
			return doc, nil
		}
	}
	return report.Document{}, core.NewRunNotFoundError(runID.String())
}

func (a *recordingArchive) List(context.Context) ([]ports.ArchiveEntry, error) {
	return nil, nil
}

func newService(t *testing.T, archive ports.ReportArchive) *AuditService {
	t.Helper()
	sc, err := scanner.NewScanner(scan.DefaultWeights())
	require.NoError(t, err)
	return NewAuditService(sc, controls.NewGenerator(testkit.RNGAdapter()), archive, nil)
}

func smallRequest() AuditRequest {
	g := testkit.RandomGrid(16, 77)
	return AuditRequest{
		Title:     "pipeline test",
		GridCtx:   grid.NewContext(g),
		Stream:    testkit.RandomStream(32, 13),
		Region:    grid.FullRegion(16),
		NControls: 20,
		Seed:      42,
		Alpha:     0.05,
	}
}

func TestRunAudit_EndToEnd(t *testing.T) {
	archive := &recordingArchive{}
	svc := newService(t, archive)

	result, err := svc.RunAudit(context.Background(), smallRequest())
	require.NoError(t, err)

	require.NotEmpty(t, result.RunID.String())
	require.Len(t, result.Controls, 20)
	require.GreaterOrEqual(t, result.Scan.Score, 0.0)
	require.GreaterOrEqual(t, result.Scan.BestPulse, 0)
	require.LessOrEqual(t, result.Scan.BestPulse, 255)

	rec, ok := result.Document.Tests["resonance_score"]
	require.True(t, ok, "document must contain the resonance test")
	require.Equal(t, result.Scan.Score, rec.Observed)
	require.Equal(t, report.AlternativeGreater, rec.Alternative)
	require.GreaterOrEqual(t, rec.PValue, 1.0/21.0)
	require.LessOrEqual(t, rec.PValue, 1.0)
	require.Equal(t, 0.05, result.Document.BonferroniThreshold)
	require.Equal(t, 1, result.Document.NTests)

	// The finalized document was archived as-is.
	require.Len(t, archive.saved, 1)
	require.Equal(t, result.Document.RunID, archive.saved[0].RunID)
}

// Identical requests yield identical test records; only run ID and timestamp
// may differ.
func TestRunAudit_Reproducible(t *testing.T) {
	svc := newService(t, nil)

	first, err := svc.RunAudit(context.Background(), smallRequest())
	require.NoError(t, err)
	second, err := svc.RunAudit(context.Background(), smallRequest())
	require.NoError(t, err)

	require.Equal(t, first.Scan, second.Scan)
	require.Equal(t, first.Controls, second.Controls)
	require.Equal(t, first.Document.Tests, second.Document.Tests)
	require.NotEqual(t, first.RunID, second.RunID)
}

func TestRunAudit_NilGrid(t *testing.T) {
	svc := newService(t, nil)
	req := smallRequest()
	req.GridCtx = nil

	_, err := svc.RunAudit(context.Background(), req)
	require.ErrorIs(t, err, core.ErrInvalidGridSize)
}

func TestRunAudit_DegenerateRegion(t *testing.T) {
	svc := newService(t, nil)
	req := smallRequest()
	req.Region = grid.Region{RowStart: 5, RowEnd: 5, ColStart: 0, ColEnd: 16}

	_, err := svc.RunAudit(context.Background(), req)
	require.ErrorIs(t, err, core.ErrDegenerateRegion)
}

func TestRunAudit_ArchiveFailureIsNotFatal(t *testing.T) {
	svc := newService(t, failingArchive{})

	result, err := svc.RunAudit(context.Background(), smallRequest())
	require.NoError(t, err, "archive failure must not abort a completed audit")
	require.NotNil(t, result)
}

type failingArchive struct{}

func (failingArchive) Save(context.Context, report.Document) error {
	return errors.New("disk on fire")
}

func (failingArchive) Get(context.Context, core.RunID) (report.Document, error) {
	return report.Document{}, errors.New("disk on fire")
}

func (failingArchive) List(context.Context) ([]ports.ArchiveEntry, error) {
	return nil, errors.New("disk on fire")
}
