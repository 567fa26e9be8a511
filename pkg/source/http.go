package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mchmarny/bureau/pkg/net"
	"github.com/mchmarny/bureau/pkg/tradeline"
)

// HTTPLoader downloads an export over http(s). The format follows the
// extension of the URL path.
type HTTPLoader struct {
	url    string
	format Format
	sheet  string
	token  string
	client *http.Client
}

// NewHTTPLoader returns a loader for the document at uri.
func NewHTTPLoader(uri string, opts Options) (*HTTPLoader, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing url: %w", ErrUnsupported, err)
	}

	format, err := FormatOf(u.Path)
	if err != nil {
		return nil, err
	}

	return &HTTPLoader{
		url:    uri,
		format: format,
		sheet:  opts.Sheet,
		token:  opts.Token,
		client: opts.HTTPClient,
	}, nil
}

// Name returns the URL without credentials.
func (l *HTTPLoader) Name() string {
	return redact(l.url)
}

// Load downloads and parses the document.
func (l *HTTPLoader) Load(ctx context.Context) ([]tradeline.Record, error) {
	c := l.client
	if c == nil {
		var err error
		if c, err = net.GetClient(ctx, l.token); err != nil {
			return nil, unavailable(l.Name(), err)
		}
	}

	slog.Debug("downloading source", "url", l.Name(), "format", l.format)

	b, err := net.Fetch(ctx, c, l.url)
	if err != nil {
		return nil, unavailable(l.Name(), err)
	}

	list, err := Parse(b, l.format, l.sheet)
	if err != nil {
		return nil, unavailable(l.Name(), err)
	}
	return list, nil
}
