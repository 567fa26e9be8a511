package behavior

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "new_trades_6m_pl": 2,
  "months_since_last_trade_pl": 1.5,
  "max_dpd_6m_cc": 0,
  "max_dpd_6m_pl": 0,
  "max_dpd_9m_cc": 0,
  "pct_missed_payments_18m": 0,
  "ratio_good_closed_pl": 0.85,
  "unsecured_enquiries_12m": 12,
  "trade_to_enquiry_ratio_uns_24m": null,
  "customer_id": 1001
}`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(validDoc))
	require.NoError(t, err)
	require.NotNil(t, f)

	require.NotNil(t, f.NewTrades6mPL)
	assert.Equal(t, 2, *f.NewTrades6mPL)
	require.NotNil(t, f.MonthsSinceLastTradePL)
	assert.Equal(t, 1.5, *f.MonthsSinceLastTradePL)
	assert.Nil(t, f.TradeToEnquiryRatio24m)
	assert.Nil(t, f.CCBalanceUtilizationPct)
	assert.True(t, f.CleanDPD())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"not json", "{"},
		{"array", "[]"},
		{"string enquiries", `{"unsecured_enquiries_12m": "12"}`},
		{"fractional count", `{"new_trades_6m_pl": 1.5}`},
		{"negative dpd", `{"max_dpd_6m_cc": -1}`},
		{"ratio above one", `{"ratio_good_closed_pl": 1.2}`},
		{"missed above hundred", `{"pct_missed_payments_18m": 101}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Nil(t, f)
		})
	}
}

func TestParseBytes_IntegralFloat(t *testing.T) {
	f, err := ParseBytes([]byte(`{"new_trades_6m_pl": 2.0, "max_dpd_6m_cc": 0.0, "unsecured_enquiries_12m": 1e1}`))
	require.NoError(t, err)

	require.NotNil(t, f.NewTrades6mPL)
	assert.Equal(t, 2, *f.NewTrades6mPL)
	require.NotNil(t, f.MaxDPD6mCC)
	assert.Equal(t, 0, *f.MaxDPD6mCC)
	require.NotNil(t, f.UnsecuredEnquiries12m)
	assert.Equal(t, 10, *f.UnsecuredEnquiries12m)
}

func TestParse_NilReader(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_EmptyObject(t *testing.T) {
	f, err := ParseBytes([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, f.Fields())
	assert.False(t, f.CleanDPD())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "behavior.json")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, *f.UnsecuredEnquiries12m)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFields(t *testing.T) {
	f, err := ParseBytes([]byte(validDoc))
	require.NoError(t, err)

	m := f.Fields()
	assert.Equal(t, int64(2), m["new_trades_6m_pl"])
	assert.Equal(t, int64(12), m["unsecured_enquiries_12m"])
	assert.Equal(t, 0.85, m["ratio_good_closed_pl"])
	_, ok := m["trade_to_enquiry_ratio_uns_24m"]
	assert.False(t, ok)
	_, ok = m["customer_id"]
	assert.False(t, ok)

	var nilFeatures *Features
	assert.Empty(t, nilFeatures.Fields())
}

func TestCleanDPD(t *testing.T) {
	zero, one := 0, 1

	assert.False(t, (*Features)(nil).CleanDPD())
	assert.False(t, (&Features{MaxDPD6mCC: &zero, MaxDPD6mPL: &zero}).CleanDPD())
	assert.False(t, (&Features{MaxDPD6mCC: &zero, MaxDPD6mPL: &zero, MaxDPD9mCC: &one}).CleanDPD())
	assert.True(t, (&Features{MaxDPD6mCC: &zero, MaxDPD6mPL: &zero, MaxDPD9mCC: &zero}).CleanDPD())
}
