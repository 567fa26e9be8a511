package finding

import (
	"fmt"
	"strings"

	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
	"github.com/mchmarny/bureau/pkg/portfolio"
)

const (
	rulePortfolioDelinquency = "portfolio.delinquency"
	rulePortfolioUnsecured   = "portfolio.unsecured_share"
	rulePortfolioOutstanding = "portfolio.outstanding_share"
	rulePortfolioDiversity   = "portfolio.diversity"
)

func (e *Engine) portfolioFindings(s *portfolio.Summary, vectors map[loan.Type]*feature.Vector) []Finding {
	t := e.thresholds.Portfolio
	list := make([]Finding, 0)

	if s.HasDelinquency {
		if s.MaxDPD != nil {
			dpd := *s.MaxDPD
			text := fmt.Sprintf("Active delinquency detected with Max DPD of %d days", dpd)
			switch {
			case dpd > t.SevereDPD:
				list = append(list, newFinding(rulePortfolioDelinquency, CategoryDelinquency, HighRisk, text,
					"Severe delinquency indicates significant repayment stress; loan may be classified as NPA"))
			case dpd > t.SignificantDPD:
				list = append(list, newFinding(rulePortfolioDelinquency, CategoryDelinquency, ModerateRisk, text,
					"Significant past-due status suggests repayment difficulty; close monitoring required"))
			case dpd > 0:
				list = append(list, newFinding(rulePortfolioDelinquency, CategoryDelinquency, Concern,
					fmt.Sprintf("Minor delinquency detected with Max DPD of %d days", dpd),
					"Early-stage past-due status; may reflect temporary cash flow mismatch"))
			}
		}
	} else {
		list = append(list, newFinding(rulePortfolioDelinquency, CategoryDelinquency, Positive,
			"No delinquency detected across the portfolio",
			"Clean delinquency record is a positive indicator for repayment discipline"))
	}

	if s.TotalExposure > 0 {
		pct := s.UnsecuredSharePct()
		text := fmt.Sprintf("Unsecured exposure is %.0f%% of total (%s of %s)",
			pct, e.format(s.UnsecuredExposure), e.format(s.TotalExposure))
		switch {
		case pct > t.UnsecuredShareModerate:
			list = append(list, newFinding(rulePortfolioUnsecured, CategoryPortfolio, ModerateRisk, text,
				"Heavily skewed towards unsecured lending; higher risk in absence of collateral"))
		case pct > t.UnsecuredShareConcern:
			list = append(list, newFinding(rulePortfolioUnsecured, CategoryPortfolio, Concern, text,
				"Majority unsecured portfolio; monitor for over-leveraging on unsecured products"))
		}

		if pct := s.OutstandingSharePct(); pct > t.OutstandingShare {
			list = append(list, newFinding(rulePortfolioOutstanding, CategoryPortfolio, Concern,
				fmt.Sprintf("Outstanding balance is %.0f%% of total sanctioned exposure", pct),
				"Most sanctioned amount still outstanding; limited repayment progress on existing obligations"))
		}
	}

	if len(vectors) >= t.DiversifiedProducts {
		types := feature.Types(vectors)
		names := make([]string, 0, len(types))
		for _, lt := range types {
			names = append(names, loan.DisplayName(lt))
		}
		list = append(list, newFinding(rulePortfolioDiversity, CategoryPortfolio, Neutral,
			fmt.Sprintf("Portfolio spans %d loan products (%s)", len(vectors), strings.Join(names, ", ")),
			"Diversified credit portfolio indicates established borrowing history across products"))
	}

	return list
}
