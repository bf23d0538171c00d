// Package app wires the scanner, control generator, and significance engine
// into the end-to-end resonance audit.
package app

import (
	"context"
	"fmt"
	"time"

	"gridsig/domain/core"
	"gridsig/domain/grid"
	"gridsig/domain/report"
	"gridsig/domain/scan"
	"gridsig/internal"
	"gridsig/internal/controls"
	"gridsig/internal/scanner"
	"gridsig/internal/significance"
	"gridsig/ports"
)

// AuditService runs the full pipeline: scan the real grid, build a
// frequency-preserving null distribution, and calibrate the observed score
// against it.
type AuditService struct {
	scanner   *scanner.Scanner
	generator *controls.Generator
	archive   ports.ReportArchive // optional; nil disables archiving
	logger    *internal.Logger
}

// AuditRequest defines the inputs for a deterministic resonance audit.
type AuditRequest struct {
	Title     string
	GridCtx   *grid.Context
	Stream    []byte
	Region    grid.Region
	NControls int
	Seed      int64
	Alpha     float64
}

// AuditResult contains the complete output of an audit run.
type AuditResult struct {
	RunID     core.RunID      `json:"run_id"`
	Scan      *scan.Result    `json:"scan"`
	Controls  []float64       `json:"controls"`
	Document  report.Document `json:"document"`
	RuntimeMs int64           `json:"runtime_ms"`
}

// NewAuditService creates an audit service. Archive may be nil when no
// persistence is configured.
func NewAuditService(sc *scanner.Scanner, gen *controls.Generator, archive ports.ReportArchive, logger *internal.Logger) *AuditService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AuditService{
		scanner:   sc,
		generator: gen,
		archive:   archive,
		logger:    logger,
	}
}

// RunAudit executes the pipeline and returns the finalized report document.
// Identical requests yield identical documents apart from run ID and
// timestamp.
func (s *AuditService) RunAudit(ctx context.Context, req AuditRequest) (*AuditResult, error) {
	startTime := time.Now()

	if req.GridCtx == nil || req.GridCtx.Grid == nil {
		return nil, fmt.Errorf("%w: audit requires a loaded grid", core.ErrInvalidGridSize)
	}
	g := req.GridCtx.Grid

	s.logger.Info("audit %q: scanning %dx%d region on grid of size %d",
		req.Title, req.Region.RowEnd-req.Region.RowStart, req.Region.ColEnd-req.Region.ColStart, g.Size())

	observed, err := s.scanner.Scan(ctx, g, req.Stream, req.Region)
	if err != nil {
		return nil, fmt.Errorf("observed scan: %w", err)
	}
	s.logger.Info("audit %q: best pulse %d score %.4f", req.Title, observed.BestPulse, observed.Score)

	// The null model randomizes the byte stream while preserving its byte
	// frequencies; each surrogate is scored with the identical sweep.
	dist, err := s.generator.Generate(ctx, req.Stream, req.NControls, req.Seed,
		func(ctx context.Context, sample []byte) (float64, error) {
			return s.scanner.ScoreStream(ctx, g, sample, req.Region)
		})
	if err != nil {
		return nil, fmt.Errorf("control generation: %w", err)
	}

	rep, err := significance.NewReport(req.Title, req.Alpha, req.Seed, req.NControls)
	if err != nil {
		return nil, err
	}
	err = rep.AddTest(
		"resonance_score",
		"the observed resonance score is consistent with a frequency-matched random byte stream",
		observed.Score,
		dist.Values,
		report.AlternativeGreater,
		"weighted symbols",
	)
	if err != nil {
		return nil, fmt.Errorf("add test: %w", err)
	}
	if err := rep.Finalize(); err != nil {
		return nil, err
	}
	doc, err := rep.Document()
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.Save(ctx, doc); err != nil {
			// Archiving is best effort; the audit result is already complete.
			s.logger.Warn("audit %q: archive save failed: %v", req.Title, err)
		}
	}

	return &AuditResult{
		RunID:     doc.RunID,
		Scan:      observed,
		Controls:  dist.Values,
		Document:  doc,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}
