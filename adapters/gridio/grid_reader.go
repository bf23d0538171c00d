// Package gridio holds the I/O adapters that load grids and byte streams
// from external sources. The analytical core never touches files; it only
// sees the values these adapters produce.
package gridio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gridsig/domain/grid"
	"gridsig/internal/errors"
	"gridsig/ports"
)

var _ ports.GridReader = (*GridReader)(nil)

// GridReader loads a grid from a JSON file (nested int arrays) or an xlsx
// sheet, chosen by file extension.
type GridReader struct {
	sheet string // xlsx sheet name; empty means the first sheet
}

// NewGridReader creates a reader. The sheet name only applies to xlsx inputs.
func NewGridReader(sheet string) *GridReader {
	return &GridReader{sheet: sheet}
}

// ReadGrid loads and validates a grid from the given path.
func (r *GridReader) ReadGrid(path string) (*grid.Grid, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.IOError(fmt.Sprintf("grid file not found: %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return r.readExcelGrid(path)
	default:
		return r.readJSONGrid(path)
	}
}

func (r *GridReader) readJSONGrid(path string) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("failed to read grid file", err)
	}
	var values [][]int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("grid file %s is not a JSON int matrix: %v", path, err))
	}
	g, err := grid.FromInts(values)
	if err != nil {
		return nil, errors.Wrapf(err, "grid file %s", path)
	}
	return g, nil
}

func (r *GridReader) readExcelGrid(path string) (*grid.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOError("failed to open xlsx grid", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	values := make([][]int, 0, len(rows))
	for i, row := range rows {
		parsed := make([]int, 0, len(row))
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("sheet %q cell (%d,%d) is not an integer: %q", sheet, i, j, cell))
			}
			parsed = append(parsed, v)
		}
		if len(parsed) > 0 {
			values = append(values, parsed)
		}
	}
	g, err := grid.FromInts(values)
	if err != nil {
		return nil, errors.Wrapf(err, "xlsx grid %s", path)
	}
	return g, nil
}
