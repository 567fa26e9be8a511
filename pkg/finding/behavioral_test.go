package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
)

func behavioral(t *testing.T, e *Engine, b *behavior.Features, rule string) []Finding {
	t.Helper()
	return findByRule(extract(e, map[loan.Type]*feature.Vector{}, b), rule)
}

func singleSeverity(t *testing.T, list []Finding) Severity {
	t.Helper()
	if len(list) == 0 {
		return ""
	}
	require.Len(t, list, 1)
	return list[0].Severity
}

func TestBehavioral_NewTrades(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		n    int
		want Severity
	}{
		{5, HighRisk},
		{3, HighRisk},
		{2, ModerateRisk},
		{1, ""},
		{0, ""},
	}
	for _, tt := range tests {
		got := behavioral(t, e, &behavior.Features{NewTrades6mPL: intPtr(tt.n)}, ruleBehaviorNewTrades)
		assert.Equal(t, tt.want, singleSeverity(t, got), "new trades %d", tt.n)
	}

	got := behavioral(t, e, &behavior.Features{NewTrades6mPL: intPtr(3)}, ruleBehaviorNewTrades)
	assert.Equal(t, "3 new personal loan trades opened in last 6 months", got[0].Finding)
	assert.Equal(t, CategoryLoanActivity, got[0].Category)
}

func TestBehavioral_RecentTrade(t *testing.T) {
	e := newTestEngine(t)
	got := behavioral(t, e, &behavior.Features{MonthsSinceLastTradePL: floatPtr(1.25)}, ruleBehaviorRecentTrade)
	require.Len(t, got, 1)
	assert.Equal(t, Concern, got[0].Severity)
	assert.Equal(t, "Last PL trade opened 1.2 months ago", got[0].Finding)

	assert.Empty(t, behavioral(t, e, &behavior.Features{MonthsSinceLastTradePL: floatPtr(2)}, ruleBehaviorRecentTrade))
}

func TestBehavioral_DPDWindows(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{
		MaxDPD6mCC: intPtr(95),
		MaxDPD6mPL: intPtr(31),
		MaxDPD9mCC: intPtr(5),
	}

	got := behavioral(t, e, b, ruleBehaviorDPD)
	require.Len(t, got, 3)
	assert.Equal(t, "Max DPD for Credit Card (6M): 95 days", got[0].Finding)
	assert.Equal(t, HighRisk, got[0].Severity)
	assert.Equal(t, "Max DPD for Personal Loan (6M): 31 days", got[1].Finding)
	assert.Equal(t, ModerateRisk, got[1].Severity)
	assert.Equal(t, "Max DPD for Credit Card (9M): 5 days", got[2].Finding)
	assert.Equal(t, Concern, got[2].Severity)
	assert.Empty(t, behavioral(t, e, b, ruleBehaviorCleanDPD))
}

func TestBehavioral_CleanDPD(t *testing.T) {
	e := newTestEngine(t)
	clean := &behavior.Features{MaxDPD6mCC: intPtr(0), MaxDPD6mPL: intPtr(0), MaxDPD9mCC: intPtr(0)}

	got := behavioral(t, e, clean, ruleBehaviorCleanDPD)
	require.Len(t, got, 1)
	assert.Equal(t, Positive, got[0].Severity)
	assert.Equal(t, "Zero DPD across all products in recent 6-9 month windows", got[0].Finding)
	assert.Empty(t, behavioral(t, e, clean, ruleBehaviorDPD))

	partial := &behavior.Features{MaxDPD6mCC: intPtr(0), MaxDPD6mPL: intPtr(0)}
	assert.Empty(t, behavioral(t, e, partial, ruleBehaviorCleanDPD))
}

func TestBehavioral_MissedPayments(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		pct  float64
		want Severity
		text string
	}{
		{12.5, HighRisk, "12.5% missed payments in last 18 months"},
		{10, Concern, "10.0% missed payments in last 18 months"},
		{0.5, Concern, "0.5% missed payments in last 18 months"},
		{0, Positive, "No missed payments in last 18 months"},
	}
	for _, tt := range tests {
		got := behavioral(t, e, &behavior.Features{PctMissedPayments18m: floatPtr(tt.pct)}, ruleBehaviorMissed)
		require.Len(t, got, 1)
		assert.Equal(t, tt.want, got[0].Severity)
		assert.Equal(t, tt.text, got[0].Finding)
	}
}

func TestBehavioral_GoodClosure(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		ratio float64
		want  Severity
	}{
		{1, Positive},
		{0.8, Positive},
		{0.75, ""},
		{0.7, ""},
		{0.6, Concern},
		{0.5, Concern},
		{0.4, HighRisk},
	}
	for _, tt := range tests {
		got := behavioral(t, e, &behavior.Features{RatioGoodClosedPL: floatPtr(tt.ratio)}, ruleBehaviorGoodClosure)
		assert.Equal(t, tt.want, singleSeverity(t, got), "ratio %.2f", tt.ratio)
	}

	got := behavioral(t, e, &behavior.Features{RatioGoodClosedPL: floatPtr(0.85)}, ruleBehaviorGoodClosure)
	assert.Equal(t, "Good closure ratio for PL loans: 85%", got[0].Finding)
}

func TestBehavioral_Utilization(t *testing.T) {
	e := newTestEngine(t)
	cc := []struct {
		pct  float64
		want Severity
	}{
		{80, HighRisk},
		{60, ModerateRisk},
		{40, ""},
		{30, Positive},
	}
	for _, tt := range cc {
		got := behavioral(t, e, &behavior.Features{CCBalanceUtilizationPct: floatPtr(tt.pct)}, ruleBehaviorCCUtilization)
		assert.Equal(t, tt.want, singleSeverity(t, got), "cc %.0f", tt.pct)
	}

	pl := []struct {
		pct  float64
		want Severity
	}{
		{85, HighRisk},
		{80, ""},
		{31, ""},
		{30, Positive},
	}
	for _, tt := range pl {
		got := behavioral(t, e, &behavior.Features{PLBalanceRemainingPct: floatPtr(tt.pct)}, ruleBehaviorPLBalance)
		assert.Equal(t, tt.want, singleSeverity(t, got), "pl %.0f", tt.pct)
	}
}

func TestBehavioral_Enquiries(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		n    int
		want Severity
	}{
		{16, HighRisk},
		{15, ModerateRisk},
		{11, ModerateRisk},
		{10, ""},
		{4, ""},
		{3, Positive},
		{0, Positive},
	}
	for _, tt := range tests {
		got := behavioral(t, e, &behavior.Features{UnsecuredEnquiries12m: intPtr(tt.n)}, ruleBehaviorEnquiries)
		assert.Equal(t, tt.want, singleSeverity(t, got), "enquiries %d", tt.n)
	}

	ratios := []struct {
		ratio float64
		want  Severity
	}{
		{10, Concern},
		{20, ""},
		{50, ""},
		{60, Positive},
	}
	for _, tt := range ratios {
		got := behavioral(t, e, &behavior.Features{TradeToEnquiryRatio24m: floatPtr(tt.ratio)}, ruleBehaviorTradeRatio)
		assert.Equal(t, tt.want, singleSeverity(t, got), "ratio %.0f", tt.ratio)
	}
}

func TestBehavioral_Interpurchase(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		months float64
		want   Severity
	}{
		{0.5, HighRisk},
		{1, Concern},
		{1.9, Concern},
		{2, ""},
		{5.9, ""},
		{6, Positive},
	}
	for _, tt := range tests {
		got := behavioral(t, e, &behavior.Features{InterpurchaseTime12m: floatPtr(tt.months)}, ruleBehaviorInterpurchase)
		assert.Equal(t, tt.want, singleSeverity(t, got), "months %.1f", tt.months)
	}
}

func TestBehavioral_AbsentInput(t *testing.T) {
	e := newTestEngine(t)
	list := extract(e, map[loan.Type]*feature.Vector{}, nil)
	for _, f := range list {
		assert.NotContains(t, f.Rule, "behavior.")
	}

	// empty behavioral input adds no findings
	assert.Equal(t, list, extract(e, map[loan.Type]*feature.Vector{}, &behavior.Features{}))
}
