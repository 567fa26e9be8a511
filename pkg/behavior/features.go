package behavior

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://bureau.local/schemas/behavior.schema.json"

var (
	//go:embed schema.json
	schemaJSON string

	// ErrInvalid is returned when the input does not satisfy the behavioral schema.
	ErrInvalid = errors.New("invalid behavioral features")

	compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader([]byte(schemaJSON))); err != nil {
			return nil, fmt.Errorf("failed to load behavioral schema: %w", err)
		}
		return c.Compile(schemaURL)
	})
)

// Features are longer-lookback borrower signals supplied by an upstream
// collaborator. Every field is optional; nil means not supplied.
type Features struct {
	NewTrades6mPL           *int     `json:"new_trades_6m_pl,omitempty" yaml:"newTrades6mPL,omitempty"`
	MonthsSinceLastTradePL  *float64 `json:"months_since_last_trade_pl,omitempty" yaml:"monthsSinceLastTradePL,omitempty"`
	MaxDPD6mCC              *int     `json:"max_dpd_6m_cc,omitempty" yaml:"maxDPD6mCC,omitempty"`
	MaxDPD6mPL              *int     `json:"max_dpd_6m_pl,omitempty" yaml:"maxDPD6mPL,omitempty"`
	MaxDPD9mCC              *int     `json:"max_dpd_9m_cc,omitempty" yaml:"maxDPD9mCC,omitempty"`
	PctMissedPayments18m    *float64 `json:"pct_missed_payments_18m,omitempty" yaml:"pctMissedPayments18m,omitempty"`
	RatioGoodClosedPL       *float64 `json:"ratio_good_closed_pl,omitempty" yaml:"ratioGoodClosedPL,omitempty"`
	CCBalanceUtilizationPct *float64 `json:"cc_balance_utilization_pct,omitempty" yaml:"ccBalanceUtilizationPct,omitempty"`
	PLBalanceRemainingPct   *float64 `json:"pl_balance_remaining_pct,omitempty" yaml:"plBalanceRemainingPct,omitempty"`
	UnsecuredEnquiries12m   *int     `json:"unsecured_enquiries_12m,omitempty" yaml:"unsecuredEnquiries12m,omitempty"`
	TradeToEnquiryRatio24m  *float64 `json:"trade_to_enquiry_ratio_uns_24m,omitempty" yaml:"tradeToEnquiryRatio24m,omitempty"`
	InterpurchaseTime12m    *float64 `json:"interpurchase_time_12m_plbl,omitempty" yaml:"interpurchaseTime12m,omitempty"`
}

// Parse validates the JSON document in r against the behavioral schema
// and decodes it. An empty document is an error.
func Parse(r io.Reader) (*Features, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalid)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read behavioral features: %w", err)
	}
	return ParseBytes(b)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) (*Features, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}

	schema, err := compiled()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// JSON Schema accepts 2.0 as an integer; re-encoding the decoded
	// document writes integral numbers without a fraction.
	canonical, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var f Features
	if err := json.Unmarshal(canonical, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &f, nil
}

// Load reads and parses the behavioral features file at path.
func Load(path string) (*Features, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open behavioral features %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Fields returns the supplied fields keyed by their JSON names. Integers are
// int64 and fractional values float64.
func (f *Features) Fields() map[string]any {
	m := make(map[string]any)
	if f == nil {
		return m
	}

	ints := map[string]*int{
		"new_trades_6m_pl":        f.NewTrades6mPL,
		"max_dpd_6m_cc":           f.MaxDPD6mCC,
		"max_dpd_6m_pl":           f.MaxDPD6mPL,
		"max_dpd_9m_cc":           f.MaxDPD9mCC,
		"unsecured_enquiries_12m": f.UnsecuredEnquiries12m,
	}
	for k, v := range ints {
		if v != nil {
			m[k] = int64(*v)
		}
	}

	floats := map[string]*float64{
		"months_since_last_trade_pl":     f.MonthsSinceLastTradePL,
		"pct_missed_payments_18m":        f.PctMissedPayments18m,
		"ratio_good_closed_pl":           f.RatioGoodClosedPL,
		"cc_balance_utilization_pct":     f.CCBalanceUtilizationPct,
		"pl_balance_remaining_pct":       f.PLBalanceRemainingPct,
		"trade_to_enquiry_ratio_uns_24m": f.TradeToEnquiryRatio24m,
		"interpurchase_time_12m_plbl":    f.InterpurchaseTime12m,
	}
	for k, v := range floats {
		if v != nil {
			m[k] = *v
		}
	}

	return m
}

// CleanDPD reports whether all three short-window DPD fields are supplied and zero.
func (f *Features) CleanDPD() bool {
	if f == nil {
		return false
	}
	for _, v := range []*int{f.MaxDPD6mCC, f.MaxDPD6mPL, f.MaxDPD9mCC} {
		if v == nil || *v != 0 {
			return false
		}
	}
	return true
}
