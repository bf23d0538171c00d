// Package testkit provides shared deterministic fixtures for tests.
package testkit

import (
	"math/rand"

	"gridsig/adapters/rng"
	"gridsig/domain/grid"
	"gridsig/ports"
)

// RNGAdapter returns the deterministic RNG port used across tests.
func RNGAdapter() ports.RNGPort {
	return rng.NewAdapter()
}

// ZeroGrid builds an n×n grid of all zeros.
func ZeroGrid(n int) *grid.Grid {
	cells := make([][]int8, n)
	for i := range cells {
		cells[i] = make([]int8, n)
	}
	g, err := grid.New(cells)
	if err != nil {
		panic(err)
	}
	return g
}

// ConstantGrid builds an n×n grid filled with the given value.
func ConstantGrid(n int, value int8) *grid.Grid {
	cells := make([][]int8, n)
	for i := range cells {
		cells[i] = make([]int8, n)
		for j := range cells[i] {
			cells[i][j] = value
		}
	}
	g, err := grid.New(cells)
	if err != nil {
		panic(err)
	}
	return g
}

// RandomGrid builds an n×n grid with seeded pseudo-random cell values.
func RandomGrid(n int, seed int64) *grid.Grid {
	r := rand.New(rand.NewSource(seed))
	cells := make([][]int8, n)
	for i := range cells {
		cells[i] = make([]int8, n)
		for j := range cells[i] {
			cells[i][j] = int8(r.Intn(256) - 128)
		}
	}
	g, err := grid.New(cells)
	if err != nil {
		panic(err)
	}
	return g
}

// ZeroStream returns a byte stream of the given length, all zeros.
func ZeroStream(length int) []byte {
	return make([]byte, length)
}

// RandomStream returns a seeded pseudo-random byte stream.
func RandomStream(length int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, length)
	for i := range out {
		out[i] = byte(r.Intn(256))
	}
	return out
}
