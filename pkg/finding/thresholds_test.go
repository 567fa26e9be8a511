package finding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultThresholds_Valid(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"portfolio dpd order", func(t *Thresholds) { t.Portfolio.SevereDPD = 20 }},
		{"unsecured share order", func(t *Thresholds) { t.Portfolio.UnsecuredShareConcern = 90 }},
		{"utilization order", func(t *Thresholds) { t.LoanType.UtilizationHealthy = 60 }},
		{"closure ladder", func(t *Thresholds) { t.Behavioral.GoodClosurePoor = 0.75 }},
		{"closure above one", func(t *Thresholds) { t.Behavioral.GoodClosureHealthy = 1.5 }},
		{"enquiry ladder", func(t *Thresholds) { t.Behavioral.EnquiriesHealthy = 12 }},
		{"interpurchase ladder", func(t *Thresholds) { t.Behavioral.InterpurchaseHealthy = 1.5 }},
		{"composite closure", func(t *Thresholds) { t.Composite.GoodClosure = 2 }},
		{"zero products", func(t *Thresholds) { t.Portfolio.DiversifiedProducts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			err := th.Validate()
			assert.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "invalid thresholds"))
		})
	}
}

func TestWithThresholds_Custom(t *testing.T) {
	th := DefaultThresholds()
	th.Portfolio.DiversifiedProducts = 1

	e := newTestEngine(t, WithThresholds(th))
	assert.Equal(t, 1, e.Thresholds().Portfolio.DiversifiedProducts)
}

func TestDefaultAmountFormatter(t *testing.T) {
	f := DefaultAmountFormatter()
	assert.True(t, strings.HasPrefix(f(150000), "INR "))
	assert.Equal(t, "INR 0", f(0))
	assert.Equal(t, "INR 500", f(499.5))
	assert.Equal(t, f(150000), f(149999.6))
}
