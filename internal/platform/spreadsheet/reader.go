// Package spreadsheet reads census exports as a stream of header-keyed rows.
// Readers are lazy and cancellable at row granularity; rows already yielded
// before cancellation remain valid.
package spreadsheet

import (
	"context"
	"strings"
)

// Row is one data row keyed by the header cell of each column. Cells beyond
// the header width are dropped; missing trailing cells are absent keys.
type Row map[string]string

// RowFunc receives each data row along with its 1-based position in the
// source file (the header row counts, so the first data row is usually 2).
// Returning an error stops the read and propagates the error.
type RowFunc func(rowNumber int, row Row) error

// Reader streams rows from a census export. Implementations skip rows whose
// cells are all blank and stop promptly when ctx is cancelled, returning
// ctx.Err().
type Reader interface {
	Read(ctx context.Context, fn RowFunc) error
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func toRow(header, cells []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(cells) {
			row[h] = cells[i]
		}
	}
	return row
}
