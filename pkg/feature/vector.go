package feature

import (
	"slices"

	"github.com/mchmarny/bureau/pkg/loan"
)

// Vector is the aggregate of all tradelines of one canonical loan type
// for a single borrower. Vectors are built fresh per query and never mutated.
type Vector struct {
	LoanType loan.Type `json:"loan_type" yaml:"loanType"`

	// Secured is true only when every tradeline in the group carries a
	// secured raw label.
	Secured      bool `json:"secured" yaml:"secured"`
	SecuredCount int  `json:"secured_count" yaml:"securedCount"`

	LoanCount              int     `json:"loan_count" yaml:"loanCount"`
	TotalSanctionedAmount  float64 `json:"total_sanctioned_amount" yaml:"totalSanctionedAmount"`
	TotalOutstandingAmount float64 `json:"total_outstanding_amount" yaml:"totalOutstandingAmount"`

	AvgVintageMonths       float64 `json:"avg_vintage_months" yaml:"avgVintageMonths"`
	MonthsSinceLastPayment *int    `json:"months_since_last_payment" yaml:"monthsSinceLastPayment"`

	LiveCount   int `json:"live_count" yaml:"liveCount"`
	ClosedCount int `json:"closed_count" yaml:"closedCount"`

	DelinquencyFlag bool    `json:"delinquency_flag" yaml:"delinquencyFlag"`
	MaxDPD          *int    `json:"max_dpd" yaml:"maxDPD"`
	OverdueAmount   float64 `json:"overdue_amount" yaml:"overdueAmount"`

	// UtilizationRatio is outstanding over limit for live credit cards.
	UtilizationRatio *float64 `json:"utilization_ratio" yaml:"utilizationRatio"`

	ForcedEventFlags []string `json:"forced_event_flags" yaml:"forcedEventFlags"`
	OnUsCount        int      `json:"on_us_count" yaml:"onUsCount"`
	OffUsCount       int      `json:"off_us_count" yaml:"offUsCount"`
}

// UnclassifiedCount returns the number of tradelines that are neither live nor closed.
func (v *Vector) UnclassifiedCount() int {
	if v == nil {
		return 0
	}
	return v.LoanCount - v.LiveCount - v.ClosedCount
}

// Types returns the loan types present in the map in canonical order.
func Types(vectors map[loan.Type]*Vector) []loan.Type {
	list := make([]loan.Type, 0, len(vectors))
	for _, t := range loan.Types() {
		if _, ok := vectors[t]; ok {
			list = append(list, t)
		}
	}
	extra := make([]loan.Type, 0)
	for t := range vectors {
		if !t.Valid() {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(list, extra...)
}
