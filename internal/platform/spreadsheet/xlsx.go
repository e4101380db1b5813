package spreadsheet

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXReader streams rows from an Excel workbook using excelize's row
// iterator, so large exports are never fully buffered.
type XLSXReader struct {
	open  func() (*excelize.File, error)
	sheet string // empty means first sheet
}

// NewXLSXReader reads the workbook at path. sheet may be empty to use the
// workbook's first sheet.
func NewXLSXReader(path, sheet string) *XLSXReader {
	return &XLSXReader{
		open:  func() (*excelize.File, error) { return excelize.OpenFile(path) },
		sheet: sheet,
	}
}

// NewXLSXReaderFrom reads a workbook from r (an uploaded file, a buffer in
// tests).
func NewXLSXReaderFrom(r io.Reader, sheet string) *XLSXReader {
	return &XLSXReader{
		open:  func() (*excelize.File, error) { return excelize.OpenReader(r) },
		sheet: sheet,
	}
}

func (x *XLSXReader) Read(ctx context.Context, fn RowFunc) error {
	f, err := x.open()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := x.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("open sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var header []string
	rowNumber := 0
	for rows.Next() {
		rowNumber++
		if err := ctx.Err(); err != nil {
			return err
		}

		cells, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read row %d: %w", rowNumber, err)
		}
		if blank(cells) {
			continue
		}

		// First non-empty row is the header.
		if header == nil {
			header = cells
			continue
		}

		if err := fn(rowNumber, toRow(header, cells)); err != nil {
			return err
		}
	}
	return rows.Error()
}
