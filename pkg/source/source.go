package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mchmarny/bureau/pkg/tradeline"
)

// DefaultTable is the table read by SQL sources when none is configured.
const DefaultTable = "tradelines"

var (
	// ErrSourceUnavailable is returned when the tradeline source cannot be read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnsupported is returned for URIs or formats no loader handles.
	ErrUnsupported = errors.New("unsupported source")
)

// Loader reads the full raw tradeline table.
type Loader interface {
	Load(ctx context.Context) ([]tradeline.Record, error)
	// Name describes the source for logs with any credentials redacted.
	Name() string
}

// Format is the tabular encoding of a document source.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf infers the format from the file extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return FormatTSV, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unknown file extension: %s", ErrUnsupported, path)
	}
}

// Options carry the loader settings that are not part of the URI.
type Options struct {
	// Sheet selects the xlsx worksheet, the first sheet when empty.
	Sheet string
	// Table is the SQL table to read, DefaultTable when empty.
	Table string
	// Token is sent as a bearer credential to http(s) sources.
	Token string
	// S3Region and S3Endpoint override the AWS defaults.
	S3Region   string
	S3Endpoint string

	HTTPClient *http.Client
	S3Client   ObjectGetter
}

func (o Options) table() string {
	if o.Table == "" {
		return DefaultTable
	}
	return o.Table
}

// Open returns the loader for uri. Supported forms are local .tsv, .txt, .csv
// and .xlsx paths, http(s) URLs, s3://bucket/key, sqlite://path and
// postgres:// connection strings.
func Open(ctx context.Context, uri string, opts Options) (Loader, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty source uri", ErrUnsupported)
	}

	scheme := ""
	if i := strings.Index(uri, "://"); i > 0 {
		scheme = strings.ToLower(uri[:i])
	}

	switch scheme {
	case "", "file":
		return NewFileLoader(strings.TrimPrefix(uri, "file://"), opts)
	case "http", "https":
		return NewHTTPLoader(uri, opts)
	case "s3":
		return NewS3Loader(ctx, uri, opts)
	case "sqlite", "postgres", "postgresql":
		driver, dsn, err := ParseDSN(uri)
		if err != nil {
			return nil, err
		}
		return NewSQLLoader(driver, dsn, opts.table())
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, scheme)
	}
}

func unavailable(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, name, err)
}

func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
