package finding

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Thresholds holds every cut-off used by the built-in rules, grouped by rule family.
type Thresholds struct {
	Portfolio  PortfolioThresholds  `json:"portfolio" yaml:"portfolio"`
	LoanType   LoanTypeThresholds   `json:"loan_type" yaml:"loanType"`
	Behavioral BehavioralThresholds `json:"behavioral" yaml:"behavioral"`
	Composite  CompositeThresholds  `json:"composite" yaml:"composite"`
}

// PortfolioThresholds apply to the borrower-level summary. Shares are percentages.
type PortfolioThresholds struct {
	SevereDPD              int     `json:"severe_dpd" yaml:"severeDPD" validate:"gtfield=SignificantDPD"`
	SignificantDPD         int     `json:"significant_dpd" yaml:"significantDPD" validate:"gt=0"`
	UnsecuredShareModerate float64 `json:"unsecured_share_moderate" yaml:"unsecuredShareModerate" validate:"gtfield=UnsecuredShareConcern,lte=100"`
	UnsecuredShareConcern  float64 `json:"unsecured_share_concern" yaml:"unsecuredShareConcern" validate:"gte=0"`
	OutstandingShare       float64 `json:"outstanding_share" yaml:"outstandingShare" validate:"gte=0"`
	DiversifiedProducts    int     `json:"diversified_products" yaml:"diversifiedProducts" validate:"gte=1"`
}

// LoanTypeThresholds apply to each per-type vector. Utilization is a percentage.
type LoanTypeThresholds struct {
	UtilizationHigh     float64 `json:"utilization_high" yaml:"utilizationHigh" validate:"gtfield=UtilizationModerate"`
	UtilizationModerate float64 `json:"utilization_moderate" yaml:"utilizationModerate" validate:"gtefield=UtilizationHealthy"`
	UtilizationHealthy  float64 `json:"utilization_healthy" yaml:"utilizationHealthy" validate:"gte=0"`
	SevereDPD           int     `json:"severe_dpd" yaml:"severeDPD" validate:"gtfield=SignificantDPD"`
	SignificantDPD      int     `json:"significant_dpd" yaml:"significantDPD" validate:"gt=0"`
}

// BehavioralThresholds apply to the individual behavioral fields.
type BehavioralThresholds struct {
	NewTradesHigh         int     `json:"new_trades_high" yaml:"newTradesHigh" validate:"gtfield=NewTradesModerate"`
	NewTradesModerate     int     `json:"new_trades_moderate" yaml:"newTradesModerate" validate:"gt=0"`
	RecentTradeMonths     float64 `json:"recent_trade_months" yaml:"recentTradeMonths" validate:"gt=0"`
	SevereDPD             int     `json:"severe_dpd" yaml:"severeDPD" validate:"gtfield=SignificantDPD"`
	SignificantDPD        int     `json:"significant_dpd" yaml:"significantDPD" validate:"gt=0"`
	MissedPaymentsHigh    float64 `json:"missed_payments_high" yaml:"missedPaymentsHigh" validate:"gt=0"`
	GoodClosureHealthy    float64 `json:"good_closure_healthy" yaml:"goodClosureHealthy" validate:"gtfield=GoodClosureConcern,lte=1"`
	GoodClosureConcern    float64 `json:"good_closure_concern" yaml:"goodClosureConcern" validate:"gtfield=GoodClosurePoor"`
	GoodClosurePoor       float64 `json:"good_closure_poor" yaml:"goodClosurePoor" validate:"gte=0"`
	CCUtilizationHigh     float64 `json:"cc_utilization_high" yaml:"ccUtilizationHigh" validate:"gtfield=CCUtilizationModerate"`
	CCUtilizationModerate float64 `json:"cc_utilization_moderate" yaml:"ccUtilizationModerate" validate:"gtefield=CCUtilizationHealthy"`
	CCUtilizationHealthy  float64 `json:"cc_utilization_healthy" yaml:"ccUtilizationHealthy" validate:"gte=0"`
	PLBalanceHigh         float64 `json:"pl_balance_high" yaml:"plBalanceHigh" validate:"gtfield=PLBalanceHealthy"`
	PLBalanceHealthy      float64 `json:"pl_balance_healthy" yaml:"plBalanceHealthy" validate:"gte=0"`
	EnquiriesHigh         int     `json:"enquiries_high" yaml:"enquiriesHigh" validate:"gtfield=EnquiriesModerate"`
	EnquiriesModerate     int     `json:"enquiries_moderate" yaml:"enquiriesModerate" validate:"gtfield=EnquiriesHealthy"`
	EnquiriesHealthy      int     `json:"enquiries_healthy" yaml:"enquiriesHealthy" validate:"gte=0"`
	TradeRatioLow         float64 `json:"trade_ratio_low" yaml:"tradeRatioLow" validate:"gte=0"`
	TradeRatioHealthy     float64 `json:"trade_ratio_healthy" yaml:"tradeRatioHealthy" validate:"gtefield=TradeRatioLow"`
	InterpurchaseHigh     float64 `json:"interpurchase_high" yaml:"interpurchaseHigh" validate:"gt=0"`
	InterpurchaseConcern  float64 `json:"interpurchase_concern" yaml:"interpurchaseConcern" validate:"gtfield=InterpurchaseHigh"`
	InterpurchaseHealthy  float64 `json:"interpurchase_healthy" yaml:"interpurchaseHealthy" validate:"gtfield=InterpurchaseConcern"`
}

// CompositeThresholds apply to the multi-field signals.
type CompositeThresholds struct {
	Enquiries     int     `json:"enquiries" yaml:"enquiries" validate:"gte=0"`
	NewTrades     int     `json:"new_trades" yaml:"newTrades" validate:"gt=0"`
	Interpurchase float64 `json:"interpurchase" yaml:"interpurchase" validate:"gt=0"`
	CCUtilization float64 `json:"cc_utilization" yaml:"ccUtilization" validate:"gte=0"`
	PLBalance     float64 `json:"pl_balance" yaml:"plBalance" validate:"gte=0"`
	TradeRatio    float64 `json:"trade_ratio" yaml:"tradeRatio" validate:"gte=0"`
	GoodClosure   float64 `json:"good_closure" yaml:"goodClosure" validate:"gte=0,lte=1"`
}

// DefaultThresholds returns the standard bureau cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Portfolio: PortfolioThresholds{
			SevereDPD:              90,
			SignificantDPD:         30,
			UnsecuredShareModerate: 80,
			UnsecuredShareConcern:  50,
			OutstandingShare:       80,
			DiversifiedProducts:    4,
		},
		LoanType: LoanTypeThresholds{
			UtilizationHigh:     75,
			UtilizationModerate: 50,
			UtilizationHealthy:  30,
			SevereDPD:           90,
			SignificantDPD:      30,
		},
		Behavioral: BehavioralThresholds{
			NewTradesHigh:         3,
			NewTradesModerate:     2,
			RecentTradeMonths:     2,
			SevereDPD:             90,
			SignificantDPD:        30,
			MissedPaymentsHigh:    10,
			GoodClosureHealthy:    0.8,
			GoodClosureConcern:    0.7,
			GoodClosurePoor:       0.5,
			CCUtilizationHigh:     75,
			CCUtilizationModerate: 50,
			CCUtilizationHealthy:  30,
			PLBalanceHigh:         80,
			PLBalanceHealthy:      30,
			EnquiriesHigh:         15,
			EnquiriesModerate:     10,
			EnquiriesHealthy:      3,
			TradeRatioLow:         20,
			TradeRatioHealthy:     50,
			InterpurchaseHigh:     1,
			InterpurchaseConcern:  2,
			InterpurchaseHealthy:  6,
		},
		Composite: CompositeThresholds{
			Enquiries:     10,
			NewTrades:     2,
			Interpurchase: 2,
			CCUtilization: 50,
			PLBalance:     50,
			TradeRatio:    30,
			GoodClosure:   0.8,
		},
	}
}

// Validate checks that every ladder is ordered from most to least severe.
func (t Thresholds) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}
