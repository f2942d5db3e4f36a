// Package sheet turns an uploaded spreadsheet into normalized line items:
// grid parsing, metadata/header location, column mapping and row extraction.
package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrParse marks a document that cannot be read as a spreadsheet or is too
// short to contain a line item table.
var ErrParse = errors.New("document is not a readable spreadsheet")

// Grid is the first sheet of an uploaded document as stringified cell
// values. Read-only once parsed.
type Grid struct {
	rows [][]string
}

// Parse decodes the first sheet of an xlsx document. Formatting and formulas
// are not evaluated; each cell is its displayed string value.
func Parse(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrParse)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 rows", ErrParse)
	}

	return &Grid{rows: rows}, nil
}

// NewGrid wraps pre-built rows; used by tests and the CLI.
func NewGrid(rows [][]string) *Grid {
	return &Grid{rows: rows}
}

// RowCount returns the number of rows on the sheet.
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// Row returns one row; nil when out of range.
func (g *Grid) Row(r int) []string {
	if r < 0 || r >= len(g.rows) {
		return nil
	}
	return g.rows[r]
}

// Cell returns a single cell value, or "" when out of range.
func (g *Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g.rows) {
		return ""
	}
	row := g.rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}
