package finding

import (
	"fmt"

	"github.com/mchmarny/bureau/pkg/behavior"
)

const (
	ruleBehaviorNewTrades     = "behavior.new_trades"
	ruleBehaviorRecentTrade   = "behavior.recent_trade"
	ruleBehaviorDPD           = "behavior.dpd"
	ruleBehaviorCleanDPD      = "behavior.dpd_clean"
	ruleBehaviorMissed        = "behavior.missed_payments"
	ruleBehaviorGoodClosure   = "behavior.good_closure"
	ruleBehaviorCCUtilization = "behavior.cc_utilization"
	ruleBehaviorPLBalance     = "behavior.pl_balance"
	ruleBehaviorEnquiries     = "behavior.enquiries"
	ruleBehaviorTradeRatio    = "behavior.trade_ratio"
	ruleBehaviorInterpurchase = "behavior.interpurchase"
)

func (e *Engine) behavioralFindings(b *behavior.Features) []Finding {
	list := make([]Finding, 0)
	list = append(list, e.loanActivityFindings(b)...)
	list = append(list, e.dpdFindings(b)...)
	list = append(list, e.paymentFindings(b)...)
	list = append(list, e.utilizationFindings(b)...)
	list = append(list, e.enquiryFindings(b)...)
	list = append(list, e.velocityFindings(b)...)
	return list
}

func (e *Engine) loanActivityFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Behavioral
	list := make([]Finding, 0)

	if b.NewTrades6mPL != nil {
		n := *b.NewTrades6mPL
		text := fmt.Sprintf("%d new personal loan trades opened in last 6 months", n)
		switch {
		case n >= t.NewTradesHigh:
			list = append(list, newFinding(ruleBehaviorNewTrades, CategoryLoanActivity, HighRisk, text,
				"Rapid PL acquisition suggests urgent credit need or loan stacking behavior"))
		case n >= t.NewTradesModerate:
			list = append(list, newFinding(ruleBehaviorNewTrades, CategoryLoanActivity, ModerateRisk, text,
				"Multiple recent PL acquisitions; monitor for emerging over-leverage"))
		}
	}

	if m := b.MonthsSinceLastTradePL; m != nil && *m < t.RecentTradeMonths {
		list = append(list, newFinding(ruleBehaviorRecentTrade, CategoryLoanActivity, Concern,
			fmt.Sprintf("Last PL trade opened %.1f months ago", *m),
			"Very recent PL activity indicates active credit seeking"))
	}

	return list
}

func (e *Engine) dpdFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Behavioral
	list := make([]Finding, 0)

	windows := []struct {
		label string
		value *int
	}{
		{"Credit Card (6M)", b.MaxDPD6mCC},
		{"Personal Loan (6M)", b.MaxDPD6mPL},
		{"Credit Card (9M)", b.MaxDPD9mCC},
	}

	for _, w := range windows {
		if w.value == nil || *w.value <= 0 {
			continue
		}
		dpd := *w.value
		text := fmt.Sprintf("Max DPD for %s: %d days", w.label, dpd)
		switch {
		case dpd > t.SevereDPD:
			list = append(list, newFinding(ruleBehaviorDPD, CategoryDPD, HighRisk, text,
				fmt.Sprintf("Severe delinquency on %s; strong negative indicator", w.label)))
		case dpd > t.SignificantDPD:
			list = append(list, newFinding(ruleBehaviorDPD, CategoryDPD, ModerateRisk, text,
				fmt.Sprintf("Significant past-due on %s; repayment under stress", w.label)))
		default:
			list = append(list, newFinding(ruleBehaviorDPD, CategoryDPD, Concern, text,
				fmt.Sprintf("Minor past-due on %s; may be a temporary delay", w.label)))
		}
	}

	if b.CleanDPD() {
		list = append(list, newFinding(ruleBehaviorCleanDPD, CategoryDPD, Positive,
			"Zero DPD across all products in recent 6-9 month windows",
			"Clean recent payment record demonstrates consistent repayment discipline"))
	}

	return list
}

func (e *Engine) paymentFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Behavioral
	list := make([]Finding, 0)

	if b.PctMissedPayments18m != nil {
		pct := *b.PctMissedPayments18m
		text := fmt.Sprintf("%.1f%% missed payments in last 18 months", pct)
		switch {
		case pct > t.MissedPaymentsHigh:
			list = append(list, newFinding(ruleBehaviorMissed, CategoryPaymentBehavior, HighRisk, text,
				"Frequent missed payments indicate chronic repayment stress"))
		case pct > 0:
			list = append(list, newFinding(ruleBehaviorMissed, CategoryPaymentBehavior, Concern, text,
				"Some missed payments detected; not habitual but warrants attention"))
		default:
			list = append(list, newFinding(ruleBehaviorMissed, CategoryPaymentBehavior, Positive,
				"No missed payments in last 18 months",
				"Perfect payment track record over 18 months is a strong positive"))
		}
	}

	if b.RatioGoodClosedPL != nil {
		r := *b.RatioGoodClosedPL
		text := fmt.Sprintf("Good closure ratio for PL loans: %.0f%%", r*100)
		switch {
		case r >= t.GoodClosureHealthy:
			list = append(list, newFinding(ruleBehaviorGoodClosure, CategoryPaymentBehavior, Positive, text,
				"Strong track record of closing personal loans in good standing"))
		case r < t.GoodClosurePoor:
			list = append(list, newFinding(ruleBehaviorGoodClosure, CategoryPaymentBehavior, HighRisk, text,
				"Poor PL closure history; majority of closed PLs had issues"))
		case r < t.GoodClosureConcern:
			list = append(list, newFinding(ruleBehaviorGoodClosure, CategoryPaymentBehavior, Concern, text,
				"Below-average PL closure quality; some loans closed with problems"))
		}
	}

	return list
}

func (e *Engine) utilizationFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Behavioral
	list := make([]Finding, 0)

	if b.CCBalanceUtilizationPct != nil {
		pct := *b.CCBalanceUtilizationPct
		text := fmt.Sprintf("CC balance utilization: %.1f%%", pct)
		switch {
		case pct > t.CCUtilizationHigh:
			list = append(list, newFinding(ruleBehaviorCCUtilization, CategoryUtilization, HighRisk, text,
				"Over-utilized credit card limits indicate high revolving credit dependency"))
		case pct > t.CCUtilizationModerate:
			list = append(list, newFinding(ruleBehaviorCCUtilization, CategoryUtilization, ModerateRisk, text,
				"Elevated CC utilization; approaching over-utilization threshold"))
		case pct <= t.CCUtilizationHealthy:
			list = append(list, newFinding(ruleBehaviorCCUtilization, CategoryUtilization, Positive, text,
				"Healthy CC utilization reflects controlled credit card usage"))
		}
	}

	if b.PLBalanceRemainingPct != nil {
		pct := *b.PLBalanceRemainingPct
		text := fmt.Sprintf("PL balance remaining: %.1f%%", pct)
		switch {
		case pct > t.PLBalanceHigh:
			list = append(list, newFinding(ruleBehaviorPLBalance, CategoryUtilization, HighRisk, text,
				"Most PL sanctioned amount still outstanding; limited principal repayment progress"))
		case pct <= t.PLBalanceHealthy:
			list = append(list, newFinding(ruleBehaviorPLBalance, CategoryUtilization, Positive, text,
				"Significant PL principal already repaid; good repayment progress"))
		}
	}

	return list
}

func (e *Engine) enquiryFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Behavioral
	list := make([]Finding, 0)

	if b.UnsecuredEnquiries12m != nil {
		n := *b.UnsecuredEnquiries12m
		text := fmt.Sprintf("%d unsecured enquiries in last 12 months", n)
		switch {
		case n > t.EnquiriesHigh:
			list = append(list, newFinding(ruleBehaviorEnquiries, CategoryEnquiryBehavior, HighRisk, text,
				"Very high enquiry pressure suggests desperate credit seeking or multiple rejections"))
		case n > t.EnquiriesModerate:
			list = append(list, newFinding(ruleBehaviorEnquiries, CategoryEnquiryBehavior, ModerateRisk, text,
				"Elevated enquiry activity; may indicate difficulty securing credit"))
		case n <= t.EnquiriesHealthy:
			list = append(list, newFinding(ruleBehaviorEnquiries, CategoryEnquiryBehavior, Positive, text,
				"Minimal enquiry activity indicates stable credit position"))
		}
	}

	if b.TradeToEnquiryRatio24m != nil {
		r := *b.TradeToEnquiryRatio24m
		text := fmt.Sprintf("Trade-to-enquiry ratio (unsecured, 24M): %.1f%%", r)
		switch {
		case r < t.TradeRatioLow:
			list = append(list, newFinding(ruleBehaviorTradeRatio, CategoryEnquiryBehavior, Concern, text,
				"Low conversion from enquiries to actual loans suggests possible rejections by lenders"))
		case r > t.TradeRatioHealthy:
			list = append(list, newFinding(ruleBehaviorTradeRatio, CategoryEnquiryBehavior, Positive, text,
				"High conversion rate indicates strong acceptance by lenders"))
		}
	}

	return list
}

func (e *Engine) velocityFindings(b *behavior.Features) []Finding {
	t := e.thresholds.Behavioral
	list := make([]Finding, 0)

	if b.InterpurchaseTime12m == nil {
		return list
	}

	m := *b.InterpurchaseTime12m
	text := fmt.Sprintf("Avg time between PL/BL acquisitions (12M): %.1f months", m)
	switch {
	case m < t.InterpurchaseHigh:
		list = append(list, newFinding(ruleBehaviorInterpurchase, CategoryLoanVelocity, HighRisk, text,
			"Rapid loan stacking; acquiring unsecured loans faster than monthly with high risk of over-leverage"))
	case m < t.InterpurchaseConcern:
		list = append(list, newFinding(ruleBehaviorInterpurchase, CategoryLoanVelocity, Concern, text,
			"Frequent loan acquisitions; borrower is actively accumulating unsecured debt"))
	case m >= t.InterpurchaseHealthy:
		list = append(list, newFinding(ruleBehaviorInterpurchase, CategoryLoanVelocity, Positive, text,
			"Measured pace of loan acquisitions indicates no urgency or stacking behavior"))
	}

	return list
}
