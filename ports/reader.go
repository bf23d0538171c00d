package ports

import (
	"gridsig/domain/grid"
)

// GridReader loads a grid from an external source (JSON file, spreadsheet).
// Loading is I/O glue outside the analytical core; the core only ever sees
// the resulting Grid value.
type GridReader interface {
	ReadGrid(path string) (*grid.Grid, error)
}

// StreamReader loads the external byte stream a scan XORs against
// (typically a cryptographic digest).
type StreamReader interface {
	ReadStream(path string) ([]byte, error)
}
