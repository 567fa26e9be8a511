package finding

import (
	"fmt"
	"strings"

	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
)

const (
	ruleLoanTypeUtilization  = "loan_type.utilization"
	ruleLoanTypeDelinquency  = "loan_type.delinquency"
	ruleLoanTypeOverdue      = "loan_type.overdue"
	ruleLoanTypeForcedEvents = "loan_type.forced_events"
)

func (e *Engine) loanTypeFindings(vectors map[loan.Type]*feature.Vector) []Finding {
	t := e.thresholds.LoanType
	list := make([]Finding, 0)

	for _, lt := range feature.Types(vectors) {
		v := vectors[lt]
		if v == nil {
			continue
		}
		name := loan.DisplayName(lt)

		if lt == loan.CC && v.UtilizationRatio != nil {
			pct := *v.UtilizationRatio * 100
			text := fmt.Sprintf("Credit card utilization at %.0f%%", pct)
			switch {
			case pct > t.UtilizationHigh:
				list = append(list, newFinding(ruleLoanTypeUtilization, CategoryUtilization, HighRisk, text,
					"Over-utilization of credit card limits signals high credit dependency and potential cash flow stress"))
			case pct > t.UtilizationModerate:
				list = append(list, newFinding(ruleLoanTypeUtilization, CategoryUtilization, ModerateRisk, text,
					"Elevated utilization; approaching high-risk threshold for revolving credit"))
			case pct <= t.UtilizationHealthy:
				list = append(list, newFinding(ruleLoanTypeUtilization, CategoryUtilization, Positive, text,
					"Healthy utilization indicates disciplined credit card usage"))
			}
		}

		if v.DelinquencyFlag && v.MaxDPD != nil {
			dpd := *v.MaxDPD
			text := fmt.Sprintf("%s: Delinquent with Max DPD of %d days", name, dpd)
			switch {
			case dpd > t.SevereDPD:
				list = append(list, newFinding(ruleLoanTypeDelinquency, CategoryDelinquency, HighRisk, text,
					fmt.Sprintf("Severe delinquency on %s account; may indicate deep financial distress", name)))
			case dpd > t.SignificantDPD:
				list = append(list, newFinding(ruleLoanTypeDelinquency, CategoryDelinquency, ModerateRisk, text,
					fmt.Sprintf("Significant past-due on %s; repayment discipline is compromised", name)))
			}
		}

		if v.OverdueAmount > 0 {
			list = append(list, newFinding(ruleLoanTypeOverdue, CategoryOutstanding, Concern,
				fmt.Sprintf("%s: Overdue amount of %s", name, e.format(v.OverdueAmount)),
				fmt.Sprintf("Active overdue balance on %s indicates unresolved payment obligation", name)))
		}

		if len(v.ForcedEventFlags) > 0 {
			list = append(list, newFinding(ruleLoanTypeForcedEvents, CategoryAdverseEvents, HighRisk,
				fmt.Sprintf("%s: Forced events detected: %s", name, strings.Join(v.ForcedEventFlags, ", ")),
				fmt.Sprintf("Adverse credit events on %s are strong negative signals for creditworthiness", name)))
		}
	}

	return list
}
