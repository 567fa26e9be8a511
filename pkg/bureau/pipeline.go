package bureau

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/finding"
	"github.com/mchmarny/bureau/pkg/loan"
	"github.com/mchmarny/bureau/pkg/portfolio"
	"github.com/mchmarny/bureau/pkg/source"
	"github.com/mchmarny/bureau/pkg/tradeline"
)

// DefaultConcurrency bounds ReportAll when no limit is given.
const DefaultConcurrency = 8

var errCacheNotSet = errors.New("source cache not set")

// Observer is notified after every computed report.
type Observer interface {
	ObserveReport(d time.Duration, list []finding.Finding, err error)
}

// Pipeline turns the cached tradeline table into per-borrower features,
// portfolio summaries and findings.
type Pipeline struct {
	cache    *source.Cache
	engine   *finding.Engine
	features feature.Options
	clock    func() time.Time
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEngine replaces the default rule engine.
func WithEngine(e *finding.Engine) Option {
	return func(p *Pipeline) {
		p.engine = e
	}
}

// WithFeatureOptions sets the feature builder options.
func WithFeatureOptions(o feature.Options) Option {
	return func(p *Pipeline) {
		p.features = o
	}
}

// WithClock sets the evaluation clock used when no as-of date is configured.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// WithObserver sets the report observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// New returns a pipeline reading tradelines from cache.
func New(cache *source.Cache, opts ...Option) (*Pipeline, error) {
	if cache == nil {
		return nil, errCacheNotSet
	}

	p := &Pipeline{
		cache:    cache,
		features: feature.Options{OnUsSectors: feature.DefaultOnUsSectors},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.engine == nil {
		e, err := finding.NewEngine()
		if err != nil {
			return nil, fmt.Errorf("creating rule engine: %w", err)
		}
		p.engine = e
	}

	return p, nil
}

// Cache returns the source cache.
func (p *Pipeline) Cache() *source.Cache {
	return p.cache
}

// Engine returns the rule engine.
func (p *Pipeline) Engine() *finding.Engine {
	return p.engine
}

func (p *Pipeline) featureOptions() feature.Options {
	o := p.features
	if o.AsOf.IsZero() {
		o.AsOf = p.clock()
	}
	return o
}

// ExtractFeatures builds the per-loan-type vectors for one borrower. A
// borrower without tradelines yields an empty map.
func (p *Pipeline) ExtractFeatures(ctx context.Context, crn int64) (map[loan.Type]*feature.Vector, error) {
	rows, err := p.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	lines := tradeline.ForCustomer(rows, crn)
	slog.Debug("extracting features",
		"customer", MaskCustomerID(crn),
		"tradelines", len(lines))

	return feature.BuildAll(lines, p.featureOptions()), nil
}

// Aggregate rolls the vectors up into a portfolio summary.
func (p *Pipeline) Aggregate(vectors map[loan.Type]*feature.Vector) *portfolio.Summary {
	return portfolio.Aggregate(vectors)
}

// ExtractKeyFindings runs the rule engine. b may be nil.
func (p *Pipeline) ExtractKeyFindings(s *portfolio.Summary, vectors map[loan.Type]*feature.Vector, b *behavior.Features) []finding.Finding {
	return p.engine.Extract(s, vectors, b)
}

// Customers returns the distinct customer reference numbers in the source,
// ascending. Rows without a usable crn are skipped.
func (p *Pipeline) Customers(ctx context.Context) ([]int64, error) {
	rows, err := p.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	list := make([]int64, 0)
	for _, r := range rows {
		crn := r.CRN()
		if crn == 0 || seen[crn] {
			continue
		}
		seen[crn] = true
		list = append(list, crn)
	}
	slices.Sort(list)
	return list, nil
}
