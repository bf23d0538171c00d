// Package scanner implements the resonance pulse sweep over a grid region.
package scanner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gridsig/domain/core"
	"gridsig/domain/grid"
	"gridsig/domain/scan"
)

// Scanner sweeps XOR pulse candidates over a grid region and scores the
// decoded bytes against a symbol weight table. A Scanner is pure: Scan reads
// only its inputs and its immutable configuration, so one instance may be
// shared across goroutines.
type Scanner struct {
	classifier *scan.Classifier
	weights    scan.WeightTable
	index      scan.IndexFunc
	pulses     scan.PulseRange
	numWorkers int
}

// NewScanner creates a scanner with the default classifier, linear cell
// indexing, and the full 0..255 pulse range.
func NewScanner(weights scan.WeightTable) (*Scanner, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{
		classifier: scan.DefaultClassifier(),
		weights:    weights,
		index:      scan.LinearIndex,
		pulses:     scan.FullPulseRange(),
		numWorkers: runtime.NumCPU(),
	}, nil
}

// SetClassifier replaces the symbol classifier.
func (s *Scanner) SetClassifier(c *scan.Classifier) {
	if c != nil {
		s.classifier = c
	}
}

// SetIndexFunc replaces the cell-to-stream index mapping. The exploratory
// callers disagree on the canonical mapping, so it stays injectable.
func (s *Scanner) SetIndexFunc(fn scan.IndexFunc) {
	if fn != nil {
		s.index = fn
	}
}

// SetPulseRange narrows the swept pulse range.
func (s *Scanner) SetPulseRange(p scan.PulseRange) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.pulses = p
	return nil
}

// SetNumWorkers configures sweep parallelism. Values below 1 fall back to a
// single worker; the result is identical regardless of worker count.
func (s *Scanner) SetNumWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.numWorkers = n
}

// Scan evaluates every pulse candidate over the region and returns the best
// pulse, its score, and the per-cell classification under that pulse. Ties
// between pulses break toward the lowest pulse value.
func (s *Scanner) Scan(ctx context.Context, g *grid.Grid, stream []byte, region grid.Region) (*scan.Result, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", core.ErrInvalidGridSize)
	}
	if len(stream) == 0 {
		return nil, core.ErrEmptyStream
	}
	if err := region.Validate(g.Size()); err != nil {
		return nil, err
	}

	scores := make([]float64, s.pulses.Count())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.numWorkers)
	for i := 0; i < s.pulses.Count(); i++ {
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			scores[i] = s.scorePulse(g, stream, region, byte(s.pulses.Lo+i))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// In-order reduction keeps the lowest-pulse tie-break deterministic
	// regardless of scheduling.
	best := 0
	for i, sc := range scores {
		if sc > scores[best] {
			best = i
		}
	}
	bestPulse := s.pulses.Lo + best

	return &scan.Result{
		BestPulse:  bestPulse,
		Score:      scores[best],
		Region:     region,
		Categories: s.classifyRegion(g, stream, region, byte(bestPulse)),
	}, nil
}

// ScoreStream scores a single byte stream against the grid using the full
// configured sweep and returns only the best score. Control generation uses
// this as its per-surrogate statistic.
func (s *Scanner) ScoreStream(ctx context.Context, g *grid.Grid, stream []byte, region grid.Region) (float64, error) {
	res, err := s.Scan(ctx, g, stream, region)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

func (s *Scanner) scorePulse(g *grid.Grid, stream []byte, region grid.Region, pulse byte) float64 {
	n := g.Size()
	score := 0.0
	for r := region.RowStart; r < region.RowEnd; r++ {
		for c := region.ColStart; c < region.ColEnd; c++ {
			raw := byte(g.At(r, c)) ^ stream[posMod(s.index(r, c, n), len(stream))] ^ pulse
			score += s.weights.Weight(s.classifier.Classify(raw))
		}
	}
	return score
}

func (s *Scanner) classifyRegion(g *grid.Grid, stream []byte, region grid.Region, pulse byte) [][]scan.SymbolCategory {
	n := g.Size()
	out := make([][]scan.SymbolCategory, region.RowEnd-region.RowStart)
	for r := region.RowStart; r < region.RowEnd; r++ {
		row := make([]scan.SymbolCategory, region.ColEnd-region.ColStart)
		for c := region.ColStart; c < region.ColEnd; c++ {
			raw := byte(g.At(r, c)) ^ stream[posMod(s.index(r, c, n), len(stream))] ^ pulse
			row[c-region.ColStart] = s.classifier.Classify(raw)
		}
		out[r-region.RowStart] = row
	}
	return out
}

// posMod keeps custom index functions safe even if they return negatives.
func posMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
