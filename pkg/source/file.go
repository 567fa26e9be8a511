package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mchmarny/bureau/pkg/tradeline"
)

// FileLoader reads a local delimited or xlsx export.
type FileLoader struct {
	path   string
	format Format
	sheet  string
}

// NewFileLoader returns a loader for the file at path, typed by extension.
func NewFileLoader(path string, opts Options) (*FileLoader, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return &FileLoader{path: path, format: format, sheet: opts.Sheet}, nil
}

// Name returns the file path.
func (l *FileLoader) Name() string {
	return l.path
}

// Load reads the whole file.
func (l *FileLoader) Load(ctx context.Context) ([]tradeline.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(l.path, err)
	}

	slog.Debug("loading file source", "path", l.path, "format", l.format)

	if l.format == FormatXLSX {
		f, err := excelize.OpenFile(l.path)
		if err != nil {
			return nil, unavailable(l.path, err)
		}
		defer f.Close()

		list, err := sheetRecords(f, l.sheet)
		if err != nil {
			return nil, unavailable(l.path, err)
		}
		return list, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, unavailable(l.path, err)
	}
	defer f.Close()

	comma := '\t'
	if l.format == FormatCSV {
		comma = ','
	}

	list, err := ParseDelimited(f, comma)
	if err != nil {
		return nil, unavailable(l.path, fmt.Errorf("parsing %s: %w", l.format, err))
	}
	return list, nil
}
