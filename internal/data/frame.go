package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Frame is an in-memory tabular dataset: named columns over rows of raw
// cells. Feature values are parsed to decimals on extraction, the outcome
// column keeps its raw label strings.
type Frame struct {
	Columns []string
	Rows    [][]string
}

func NewFrame(columns []string, rows [][]string) (*Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("frame must have at least one column")
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
	}

	return &Frame{Columns: columns, Rows: rows}, nil
}

func (f *Frame) NumRows() int {
	return len(f.Rows)
}

func (f *Frame) HasColumn(name string) bool {
	return f.columnIndex(name) >= 0
}

func (f *Frame) columnIndex(name string) int {
	for i, col := range f.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Partition drops the outcome column and returns the remaining columns as a
// feature matrix, the outcome cells as raw labels, and the feature column
// order the matrix was built in.
func (f *Frame) Partition(outcome string) ([][]decimal.Decimal, []string, []string, error) {
	outcomeIdx := f.columnIndex(outcome)
	if outcomeIdx < 0 {
		return nil, nil, nil, fmt.Errorf("column %q not found in frame", outcome)
	}

	inputOrder := make([]string, 0, len(f.Columns)-1)
	for i, col := range f.Columns {
		if i != outcomeIdx {
			inputOrder = append(inputOrder, col)
		}
	}

	X := make([][]decimal.Decimal, len(f.Rows))
	labels := make([]string, len(f.Rows))

	for i, row := range f.Rows {
		features := make([]decimal.Decimal, 0, len(row)-1)
		for j, cell := range row {
			if j == outcomeIdx {
				labels[i] = cell
				continue
			}
			val, err := decimal.NewFromString(cell)
			if err != nil {
				val = decimal.Zero
			}
			features = append(features, val)
		}
		X[i] = features
	}

	return X, labels, inputOrder, nil
}
