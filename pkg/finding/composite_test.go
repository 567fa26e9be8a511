package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
)

func compositeRules(list []Finding) []string {
	out := make([]string, 0)
	for _, f := range list {
		if f.Category == CategoryCompositeSignal {
			out = append(out, f.Rule)
		}
	}
	return out
}

func TestComposite_CreditHungry(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{UnsecuredEnquiries12m: intPtr(12), NewTrades6mPL: intPtr(2)}

	got := behavioral(t, e, b, ruleCompositeCreditHungry)
	require.Len(t, got, 1)
	assert.Equal(t, HighRisk, got[0].Severity)
	assert.Equal(t, "High enquiry volume (12 in 12M) combined with 2 new PL trades in 6M", got[0].Finding)

	b.NewTrades6mPL = intPtr(1)
	assert.Empty(t, behavioral(t, e, b, ruleCompositeCreditHungry))

	b.NewTrades6mPL = intPtr(2)
	b.UnsecuredEnquiries12m = intPtr(10)
	assert.Empty(t, behavioral(t, e, b, ruleCompositeCreditHungry))
}

func TestComposite_RapidStacking(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{InterpurchaseTime12m: floatPtr(1.5), NewTrades6mPL: intPtr(3)}

	got := behavioral(t, e, b, ruleCompositeRapidStacking)
	require.Len(t, got, 1)
	assert.Equal(t, HighRisk, got[0].Severity)
	assert.Equal(t, "Avg 1.5 months between PL/BL with 3 new trades in 6M", got[0].Finding)

	b.InterpurchaseTime12m = floatPtr(2)
	assert.Empty(t, behavioral(t, e, b, ruleCompositeRapidStacking))
}

func TestComposite_Leverage(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{CCBalanceUtilizationPct: floatPtr(60), PLBalanceRemainingPct: floatPtr(70)}

	got := behavioral(t, e, b, ruleCompositeLeverage)
	require.Len(t, got, 1)
	assert.Equal(t, ModerateRisk, got[0].Severity)
	assert.Equal(t, "CC utilization at 60.0% and PL balance remaining at 70.0%", got[0].Finding)

	b.PLBalanceRemainingPct = nil
	assert.Empty(t, behavioral(t, e, b, ruleCompositeLeverage))
}

func TestComposite_LowConversion(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{UnsecuredEnquiries12m: intPtr(11), TradeToEnquiryRatio24m: floatPtr(25)}

	got := behavioral(t, e, b, ruleCompositeLowConversion)
	require.Len(t, got, 1)
	assert.Equal(t, ModerateRisk, got[0].Severity)
	assert.Equal(t, "High enquiries (11) but only 25.0% trade-to-enquiry conversion", got[0].Finding)

	b.TradeToEnquiryRatio24m = floatPtr(30)
	assert.Empty(t, behavioral(t, e, b, ruleCompositeLowConversion))
}

func TestComposite_CleanProfile(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{
		MaxDPD6mCC:           intPtr(0),
		MaxDPD6mPL:           intPtr(0),
		MaxDPD9mCC:           intPtr(0),
		PctMissedPayments18m: floatPtr(0),
		RatioGoodClosedPL:    floatPtr(0.9),
	}

	got := behavioral(t, e, b, ruleCompositeCleanProfile)
	require.Len(t, got, 1)
	assert.Equal(t, Positive, got[0].Severity)
	assert.Equal(t, "Zero DPD, no missed payments, and 90% good PL closure ratio", got[0].Finding)

	b.PctMissedPayments18m = floatPtr(0.1)
	assert.Empty(t, behavioral(t, e, b, ruleCompositeCleanProfile))
}

func TestComposite_GatedOnBehavioralInput(t *testing.T) {
	e := newTestEngine(t)
	vectors := map[loan.Type]*feature.Vector{
		loan.PL: {LoanType: loan.PL, LoanCount: 4, TotalSanctionedAmount: 100000, TotalOutstandingAmount: 90000},
		loan.CC: {LoanType: loan.CC, LoanCount: 2, UtilizationRatio: floatPtr(0.9)},
	}

	assert.Empty(t, compositeRules(extract(e, vectors, nil)))

	b := &behavior.Features{
		UnsecuredEnquiries12m:   intPtr(20),
		NewTrades6mPL:           intPtr(4),
		InterpurchaseTime12m:    floatPtr(0.5),
		CCBalanceUtilizationPct: floatPtr(90),
		PLBalanceRemainingPct:   floatPtr(90),
		TradeToEnquiryRatio24m:  floatPtr(10),
	}
	assert.Equal(t, []string{
		ruleCompositeCreditHungry,
		ruleCompositeRapidStacking,
		ruleCompositeLeverage,
		ruleCompositeLowConversion,
	}, compositeRules(extract(e, vectors, b)))
}

func TestComposite_AfterBehavioralWithinRank(t *testing.T) {
	e := newTestEngine(t)
	b := &behavior.Features{
		UnsecuredEnquiries12m: intPtr(20),
		NewTrades6mPL:         intPtr(4),
	}

	list := extract(e, map[loan.Type]*feature.Vector{}, b)
	high := make([]string, 0)
	for _, f := range list {
		if f.Severity == HighRisk {
			high = append(high, f.Rule)
		}
	}
	assert.Equal(t, []string{ruleBehaviorNewTrades, ruleBehaviorEnquiries, ruleCompositeCreditHungry}, high)
}
