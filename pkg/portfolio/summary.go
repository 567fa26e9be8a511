package portfolio

import (
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
)

// Summary is the portfolio-level roll-up of one borrower's feature vectors.
type Summary struct {
	TotalTradelines  int `json:"total_tradelines" yaml:"totalTradelines"`
	LiveTradelines   int `json:"live_tradelines" yaml:"liveTradelines"`
	ClosedTradelines int `json:"closed_tradelines" yaml:"closedTradelines"`

	ProductBreakdown map[loan.Type]*feature.Vector `json:"product_breakdown" yaml:"productBreakdown"`

	TotalExposure     float64 `json:"total_exposure" yaml:"totalExposure"`
	TotalOutstanding  float64 `json:"total_outstanding" yaml:"totalOutstanding"`
	UnsecuredExposure float64 `json:"unsecured_exposure" yaml:"unsecuredExposure"`

	HasDelinquency bool `json:"has_delinquency" yaml:"hasDelinquency"`
	MaxDPD         *int `json:"max_dpd" yaml:"maxDPD"`
}

// Aggregate rolls the per-type vectors up into a Summary. The vectors are
// retained as the product breakdown; an empty or nil map yields zero totals.
func Aggregate(vectors map[loan.Type]*feature.Vector) *Summary {
	s := &Summary{
		ProductBreakdown: make(map[loan.Type]*feature.Vector, len(vectors)),
	}

	for t, v := range vectors {
		if v == nil {
			continue
		}
		s.ProductBreakdown[t] = v

		s.TotalTradelines += v.LoanCount
		s.LiveTradelines += v.LiveCount
		s.ClosedTradelines += v.ClosedCount

		s.TotalExposure += v.TotalSanctionedAmount
		s.TotalOutstanding += v.TotalOutstandingAmount
		if !v.Secured {
			s.UnsecuredExposure += v.TotalSanctionedAmount
		}

		if v.DelinquencyFlag {
			s.HasDelinquency = true
		}

		if v.MaxDPD != nil && (s.MaxDPD == nil || *v.MaxDPD > *s.MaxDPD) {
			d := *v.MaxDPD
			s.MaxDPD = &d
		}
	}

	return s
}

// Types returns the loan types in the breakdown in canonical order.
func (s *Summary) Types() []loan.Type {
	if s == nil {
		return []loan.Type{}
	}
	return feature.Types(s.ProductBreakdown)
}

// UnsecuredSharePct is unsecured exposure as a percentage of total exposure.
func (s *Summary) UnsecuredSharePct() float64 {
	return share(s.UnsecuredExposure, s.TotalExposure)
}

// OutstandingSharePct is total outstanding as a percentage of total exposure.
func (s *Summary) OutstandingSharePct() float64 {
	return share(s.TotalOutstanding, s.TotalExposure)
}

func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// Totals returns the scalar portfolio fields keyed by their JSON names.
func (s *Summary) Totals() map[string]any {
	m := map[string]any{
		"total_tradelines":   int64(s.TotalTradelines),
		"live_tradelines":    int64(s.LiveTradelines),
		"closed_tradelines":  int64(s.ClosedTradelines),
		"total_exposure":     s.TotalExposure,
		"total_outstanding":  s.TotalOutstanding,
		"unsecured_exposure": s.UnsecuredExposure,
		"has_delinquency":    s.HasDelinquency,
		"product_count":      int64(len(s.ProductBreakdown)),
	}
	if s.MaxDPD != nil {
		m["max_dpd"] = int64(*s.MaxDPD)
	}
	return m
}
