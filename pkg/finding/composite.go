package finding

import (
	"fmt"

	"github.com/mchmarny/bureau/pkg/behavior"
)

const (
	ruleCompositeCreditHungry  = "composite.credit_hungry"
	ruleCompositeRapidStacking = "composite.rapid_stacking"
	ruleCompositeLeverage      = "composite.leverage"
	ruleCompositeLowConversion = "composite.low_conversion"
	ruleCompositeCleanProfile  = "composite.clean_profile"
)

func (e *Engine) compositeFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Composite
	list := make([]Finding, 0)

	enquiries := b.UnsecuredEnquiries12m
	newPL := b.NewTrades6mPL
	ipt := b.InterpurchaseTime12m

	if enquiries != nil && *enquiries > t.Enquiries && newPL != nil && *newPL >= t.NewTrades {
		list = append(list, newFinding(ruleCompositeCreditHungry, CategoryCompositeSignal, HighRisk,
			fmt.Sprintf("High enquiry volume (%d in 12M) combined with %d new PL trades in 6M", *enquiries, *newPL),
			"Credit hungry behavior with active loan stacking; elevated risk of debt spiral"))
	}

	if ipt != nil && *ipt < t.Interpurchase && newPL != nil && *newPL >= t.NewTrades {
		list = append(list, newFinding(ruleCompositeRapidStacking, CategoryCompositeSignal, HighRisk,
			fmt.Sprintf("Avg %.1f months between PL/BL with %d new trades in 6M", *ipt, *newPL),
			"Rapid PL stacking pattern; borrower is accumulating unsecured debt at an accelerating pace"))
	}

	cc := b.CCBalanceUtilizationPct
	pl := b.PLBalanceRemainingPct
	if cc != nil && *cc > t.CCUtilization && pl != nil && *pl > t.PLBalance {
		list = append(list, newFinding(ruleCompositeLeverage, CategoryCompositeSignal, ModerateRisk,
			fmt.Sprintf("CC utilization at %.1f%% and PL balance remaining at %.1f%%", *cc, *pl),
			"Elevated leverage across both revolving and term products; limited debt servicing headroom"))
	}

	ratio := b.TradeToEnquiryRatio24m
	if enquiries != nil && *enquiries > t.Enquiries && ratio != nil && *ratio < t.TradeRatio {
		list = append(list, newFinding(ruleCompositeLowConversion, CategoryCompositeSignal, ModerateRisk,
			fmt.Sprintf("High enquiries (%d) but only %.1f%% trade-to-enquiry conversion", *enquiries, *ratio),
			"Low conversion rate despite high enquiry volume suggests multiple lender rejections"))
	}

	missed := b.PctMissedPayments18m
	good := b.RatioGoodClosedPL
	if b.CleanDPD() && missed != nil && *missed == 0 && good != nil && *good >= t.GoodClosure {
		list = append(list, newFinding(ruleCompositeCleanProfile, CategoryCompositeSignal, Positive,
			fmt.Sprintf("Zero DPD, no missed payments, and %.0f%% good PL closure ratio", *good*100),
			"Exemplary repayment profile; strong candidate from a credit discipline standpoint"))
	}

	return list
}
