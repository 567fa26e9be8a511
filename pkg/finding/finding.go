package finding

import (
	"slices"

	"github.com/google/uuid"
)

// Severity grades a finding from high risk to positive.
type Severity string

const (
	HighRisk     Severity = "high_risk"
	ModerateRisk Severity = "moderate_risk"
	Concern      Severity = "concern"
	Neutral      Severity = "neutral"
	Positive     Severity = "positive"
)

var severityRanks = map[Severity]int{
	HighRisk:     0,
	ModerateRisk: 1,
	Concern:      2,
	Neutral:      3,
	Positive:     4,
}

// Rank orders severities from most to least severe. Unrecognized values rank as Neutral.
func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	return severityRanks[Neutral]
}

// Valid reports whether s is one of the five known severities.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Severities returns the known severities in rank order.
func Severities() []Severity {
	return []Severity{HighRisk, ModerateRisk, Concern, Neutral, Positive}
}

// Category groups findings by the feature family that produced them.
type Category string

const (
	CategoryDelinquency     Category = "Delinquency"
	CategoryPortfolio       Category = "Portfolio"
	CategoryUtilization     Category = "Utilization"
	CategoryOutstanding     Category = "Outstanding"
	CategoryAdverseEvents   Category = "Adverse Events"
	CategoryLoanActivity    Category = "Loan Activity"
	CategoryDPD             Category = "DPD & Delinquency"
	CategoryPaymentBehavior Category = "Payment Behavior"
	CategoryEnquiryBehavior Category = "Enquiry Behavior"
	CategoryLoanVelocity    Category = "Loan Velocity"
	CategoryCompositeSignal Category = "Composite Signal"
	CategoryCustom          Category = "Custom Rule"
)

var categories = []Category{
	CategoryDelinquency,
	CategoryPortfolio,
	CategoryUtilization,
	CategoryOutstanding,
	CategoryAdverseEvents,
	CategoryLoanActivity,
	CategoryDPD,
	CategoryPaymentBehavior,
	CategoryEnquiryBehavior,
	CategoryLoanVelocity,
	CategoryCompositeSignal,
	CategoryCustom,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

// Finding is one factual observation with its risk interpretation.
type Finding struct {
	ID        string   `json:"id" yaml:"id"`
	Rule      string   `json:"rule" yaml:"rule"`
	Category  Category `json:"category" yaml:"category"`
	Finding   string   `json:"finding" yaml:"finding"`
	Inference string   `json:"inference" yaml:"inference"`
	Severity  Severity `json:"severity" yaml:"severity"`
}

func newFinding(rule string, c Category, s Severity, text, inference string) Finding {
	return Finding{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(rule+"|"+text)).String(),
		Rule:      rule,
		Category:  c,
		Finding:   text,
		Inference: inference,
		Severity:  s,
	}
}

// Sort orders findings by severity rank. Equal ranks keep their relative order.
func Sort(list []Finding) {
	slices.SortStableFunc(list, func(a, b Finding) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
}

// CountBySeverity tallies the findings per severity.
func CountBySeverity(list []Finding) map[Severity]int {
	m := make(map[Severity]int)
	for _, f := range list {
		m[f.Severity]++
	}
	return m
}
