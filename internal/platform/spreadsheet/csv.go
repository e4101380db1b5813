package spreadsheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVReader streams rows from a delimited text export.
type CSVReader struct {
	src   io.Reader
	comma rune
}

// NewCSVReader reads comma-delimited text from src.
func NewCSVReader(src io.Reader) *CSVReader {
	return &CSVReader{src: src, comma: ','}
}

// NewDelimitedReader reads text delimited by comma (e.g. '\t' for
// tab-separated exports).
func NewDelimitedReader(src io.Reader, comma rune) *CSVReader {
	return &CSVReader{src: src, comma: comma}
}

func (c *CSVReader) Read(ctx context.Context, fn RowFunc) error {
	r := csv.NewReader(c.src)
	r.Comma = c.comma
	r.FieldsPerRecord = -1 // ragged rows are tolerated; the mapper decides

	var header []string
	rowNumber := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", rowNumber+1, err)
		}
		rowNumber++

		if blank(cells) {
			continue
		}
		if header == nil {
			header = cells
			continue
		}
		if err := fn(rowNumber, toRow(header, cells)); err != nil {
			return err
		}
	}
}
