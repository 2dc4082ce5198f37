// Package rowstore defines the tabular storage contract the ledger is written
// against. The household spreadsheet is the real implementation; SQLite and an
// in-memory store stand in for it offline and in tests.
package rowstore

import (
	"context"
	"errors"
	"strings"
)

// ErrCellNotFound is returned by FindCell when no cell matches.
var ErrCellNotFound = errors.New("cell not found")

// ErrTableNotFound is returned when a named table does not exist.
var ErrTableNotFound = errors.New("table not found")

// Cell addresses a cell with 1-based row and column numbers, as a spreadsheet does.
type Cell struct {
	Row int
	Col int
}

// Store is a set of named tables of string cells.
type Store interface {
	// GetRows returns every row of the table in order. Trailing empty rows are omitted.
	GetRows(ctx context.Context, table string) ([][]string, error)
	// AppendRow adds a row after the last non-empty row.
	AppendRow(ctx context.Context, table string, values []string) error
	// FindCell returns the first cell, scanning row by row, whose whole content equals value.
	FindCell(ctx context.Context, table, value string) (Cell, error)
	// DeleteRow removes the 1-based row and shifts the rows below it up.
	DeleteRow(ctx context.Context, table string, row int) error
	// Close releases any connection held by the store.
	Close() error
}

// CellValue returns the 1-based (row, col) cell of rows, or "" when out of range.
func CellValue(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// FindInRows scans rows for a cell equal to value. Shared by backends that
// cannot search server-side.
func FindInRows(rows [][]string, value string) (Cell, bool) {
	for i, row := range rows {
		for j, cell := range row {
			if cell == value {
				return Cell{Row: i + 1, Col: j + 1}, true
			}
		}
	}
	return Cell{}, false
}

// TrimRows drops trailing empty cells from each row and trailing empty rows,
// matching what the spreadsheet API reports.
func TrimRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		end := len(row)
		for end > 0 && strings.TrimSpace(row[end-1]) == "" {
			end--
		}
		out = append(out, append([]string(nil), row[:end]...))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}
