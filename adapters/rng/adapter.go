// Package rng provides the deterministic seeded RNG adapter behind
// ports.RNGPort.
package rng

import (
	"context"
	"math/rand"
)

// Adapter implements ports.RNGPort with plain seeded math/rand sources.
type Adapter struct{}

// NewAdapter creates the adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named
// operation. The name scopes intent only; the stream depends solely on the
// seed so results are reproducible across processes.
func (a *Adapter) SeededStream(_ context.Context, _ string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a deterministic RNG stream for a specific run/stage.
// The run and stage names are folded into the seed so distinct stages of the
// same run draw from distinct but reproducible streams.
func (a *Adapter) Stream(_ context.Context, runID, stageName string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if runID != "" {
		seed += int64(hashString(runID))
	}
	if stageName != "" {
		seed += int64(hashString(stageName))
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
