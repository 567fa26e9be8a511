package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mchmarny/bureau/pkg/tradeline"
)

// ParseDelimited reads a header row followed by data rows separated by comma.
// Short rows leave the trailing columns absent; blank lines are skipped.
func ParseDelimited(r io.Reader, comma rune) ([]tradeline.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	rows := make([][]string, 0)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		rows = append(rows, row)
	}

	return toRecords(header, rows)
}

// ParseXLSX reads the named sheet, or the first one, of an xlsx workbook.
func ParseXLSX(r io.Reader, sheet string) ([]tradeline.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	return sheetRecords(f, sheet)
}

func sheetRecords(f *excelize.File, sheet string) ([]tradeline.Record, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s: missing header row", sheet)
	}

	return toRecords(rows[0], rows[1:])
}

// Parse decodes an in-memory document in the given format.
func Parse(b []byte, format Format, sheet string) ([]tradeline.Record, error) {
	switch format {
	case FormatTSV:
		return ParseDelimited(bytes.NewReader(b), '\t')
	case FormatCSV:
		return ParseDelimited(bytes.NewReader(b), ',')
	case FormatXLSX:
		return ParseXLSX(bytes.NewReader(b), sheet)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupported, format)
	}
}

func toRecords(header []string, rows [][]string) ([]tradeline.Record, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if !containsColumn(cols, tradeline.ColumnCRN) {
		return nil, fmt.Errorf("missing required column %q", tradeline.ColumnCRN)
	}

	list := make([]tradeline.Record, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		r := make(tradeline.Record, len(cols))
		for i, v := range row {
			if i >= len(cols) || cols[i] == "" {
				break
			}
			r[cols[i]] = v
		}
		list = append(list, r)
	}
	return list, nil
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
