package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mchmarny/bureau/pkg/net"
	"github.com/mchmarny/bureau/pkg/tradeline"
)

// ObjectGetter is the subset of the S3 API used to read exports.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads an export stored as an S3 object.
type S3Loader struct {
	bucket string
	key    string
	format Format
	sheet  string
	client ObjectGetter
}

// NewS3Loader returns a loader for s3://bucket/key. When opts.S3Client is
// nil a client is built from the default AWS credential chain.
func NewS3Loader(ctx context.Context, uri string, opts Options) (*S3Loader, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	format, err := FormatOf(key)
	if err != nil {
		return nil, err
	}

	client := opts.S3Client
	if client == nil {
		if client, err = newS3Client(ctx, opts.S3Region, opts.S3Endpoint); err != nil {
			return nil, err
		}
	}

	return &S3Loader{
		bucket: bucket,
		key:    key,
		format: format,
		sheet:  opts.Sheet,
		client: client,
	}, nil
}

func parseS3URI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: not an s3 uri: %s", ErrUnsupported, uri)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 uri requires bucket and key: %s", ErrUnsupported, uri)
	}
	return bucket, key, nil
}

func newS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Name returns the object URI.
func (l *S3Loader) Name() string {
	return "s3://" + l.bucket + "/" + l.key
}

// Load reads and parses the object.
func (l *S3Loader) Load(ctx context.Context) ([]tradeline.Record, error) {
	slog.Debug("reading s3 source", "bucket", l.bucket, "key", l.key)

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, unavailable(l.Name(), err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, net.MaxDownloadBytes))
	if err != nil {
		return nil, unavailable(l.Name(), fmt.Errorf("reading object: %w", err))
	}

	list, err := Parse(b, l.format, l.sheet)
	if err != nil {
		return nil, unavailable(l.Name(), err)
	}
	return list, nil
}
