package bureau

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gowebpki/jcs"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/finding"
	"github.com/mchmarny/bureau/pkg/loan"
	"github.com/mchmarny/bureau/pkg/portfolio"
	"github.com/mchmarny/bureau/pkg/tradeline"
)

// Report is the complete deterministic output for one borrower.
type Report struct {
	CRN      int64                         `json:"crn" yaml:"crn"`
	AsOf     string                        `json:"as_of" yaml:"asOf"`
	Features map[loan.Type]*feature.Vector `json:"features" yaml:"features"`
	Summary  *portfolio.Summary            `json:"summary" yaml:"summary"`
	Findings []finding.Finding             `json:"findings" yaml:"findings"`
	Counts   map[finding.Severity]int      `json:"counts" yaml:"counts"`
	// Digest is the hex SHA-256 of the canonical JSON of summary and findings.
	Digest string `json:"digest" yaml:"digest"`
}

// Report computes features, summary and findings for one borrower.
func (p *Pipeline) Report(ctx context.Context, crn int64, b *behavior.Features) (*Report, error) {
	start := time.Now()
	r, err := p.report(ctx, crn, b)
	if p.observer != nil {
		var list []finding.Finding
		if r != nil {
			list = r.Findings
		}
		p.observer.ObserveReport(time.Since(start), list, err)
	}
	return r, err
}

func (p *Pipeline) report(ctx context.Context, crn int64, b *behavior.Features) (*Report, error) {
	opts := p.featureOptions()

	rows, err := p.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	vectors := feature.BuildAll(tradeline.ForCustomer(rows, crn), opts)
	s := p.Aggregate(vectors)
	list := p.ExtractKeyFindings(s, vectors, b)

	digest, err := Digest(s, list)
	if err != nil {
		return nil, err
	}

	slog.Debug("report computed",
		"customer", MaskCustomerID(crn),
		"types", len(vectors),
		"findings", len(list))

	return &Report{
		CRN:      crn,
		AsOf:     opts.AsOf.Format("2006-01-02"),
		Features: vectors,
		Summary:  s,
		Findings: list,
		Counts:   finding.CountBySeverity(list),
		Digest:   digest,
	}, nil
}

// Digest returns the hex SHA-256 of the RFC 8785 canonical JSON of the
// summary and findings.
func Digest(s *portfolio.Summary, list []finding.Finding) (string, error) {
	b, err := json.Marshal(struct {
		Summary  *portfolio.Summary `json:"summary"`
		Findings []finding.Finding  `json:"findings"`
	}{s, list})
	if err != nil {
		return "", fmt.Errorf("error marshaling report: %w", err)
	}

	c, err := jcs.Transform(b)
	if err != nil {
		return "", fmt.Errorf("error canonicalizing report: %w", err)
	}

	sum := sha256.Sum256(c)
	return hex.EncodeToString(sum[:]), nil
}

// ReportAll computes reports for many borrowers with at most limit running
// at once. Results follow the order of crns. behavioral may be nil or miss
// borrowers.
func (p *Pipeline) ReportAll(ctx context.Context, crns []int64, behavioral map[int64]*behavior.Features, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	// load once before fanning out
	if _, err := p.cache.Get(ctx); err != nil {
		return nil, err
	}

	list := make([]*Report, len(crns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, crn := range crns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := p.Report(gctx, crn, behavioral[crn])
			if err != nil {
				return fmt.Errorf("error computing report for %s: %w", MaskCustomerID(crn), err)
			}
			list[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("batch complete", "reports", len(list), "limit", limit)
	return list, nil
}
