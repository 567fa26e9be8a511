package loan

import (
	"slices"
	"strings"
)

// Type is the canonical loan type a bureau tradeline is classified into.
type Type string

const (
	PL    Type = "personal_loan"
	CC    Type = "credit_card"
	HL    Type = "home_loan"
	AL    Type = "auto_loan"
	BL    Type = "business_loan"
	LAP   Type = "lap_las_lad"
	GL    Type = "gold_loan"
	TWL   Type = "two_wheeler_loan"
	CD    Type = "consumer_durable"
	Other Type = "other"
)

var (
	// canonical order, used wherever output must not depend on map iteration
	types = []Type{PL, CC, HL, AL, BL, LAP, GL, TWL, CD, Other}

	displayNames = map[Type]string{
		PL:    "Personal Loan",
		CC:    "Credit Card",
		HL:    "Home Loan",
		AL:    "Auto Loan",
		BL:    "Business Loan",
		LAP:   "LAP/LAS/LAD",
		GL:    "Gold Loan",
		TWL:   "Two-Wheeler Loan",
		CD:    "Consumer Durable",
		Other: "Other",
	}

	// raw bureau loan_type label -> canonical type
	normalization = map[string]Type{
		"Personal Loan":            PL,
		"Short Term Personal Loan": PL,

		"Credit Card":           CC,
		"Secured Credit Card":   CC,
		"Corporate Credit Card": CC,

		"Home Loan":    HL,
		"Housing Loan": HL,

		"Auto Loan":               AL,
		"Used Car Loan":           AL,
		"Commercial Vehicle Loan": AL,

		"Business Loan - General":                       BL,
		"Business Loan - Priority Sector - Agriculture": BL,
		"Business Loan - Secured":                       BL,
		"Business Loan - Unsecured":                     BL,
		"GECL Loan Secured":                             BL,
		"GECL Loan Unsecured":                           BL,

		"Loan_against_securities": LAP,
		"Property Loan":           LAP,
		"Loan Against Property":   LAP,

		"Gold Loan":                   GL,
		"Priority Sector - Gold Loan": GL,

		"Two-wheeler Loan": TWL,
		"Two Wheeler Loan": TWL,

		"Consumer Loan":         CD,
		"Consumer Durable Loan": CD,

		"Other": Other,
	}

	// raw labels backed by collateral; canonical types like BL and CC carry both variants
	securedLabels = map[string]bool{
		"Home Loan":                   true,
		"Housing Loan":                true,
		"Auto Loan":                   true,
		"Used Car Loan":               true,
		"Commercial Vehicle Loan":     true,
		"Property Loan":               true,
		"Loan Against Property":       true,
		"Loan_against_securities":     true,
		"Gold Loan":                   true,
		"Priority Sector - Gold Loan": true,
		"Two-wheeler Loan":            true,
		"Two Wheeler Loan":            true,
		"GECL Loan Secured":           true,
		"Business Loan - Secured":     true,
		"Secured Credit Card":         true,
	}

	normalizationFolded = fold(normalization)
	securedFolded       = fold(securedLabels)
)

func fold[T any](m map[string]T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Normalize maps a raw loan_type label to its canonical Type.
// It never fails: labels without a taxonomy entry map to Other.
func Normalize(raw string) Type {
	label := strings.TrimSpace(raw)
	if t, ok := normalization[label]; ok {
		return t
	}
	if t, ok := normalizationFolded[strings.ToLower(label)]; ok {
		return t
	}
	return Other
}

// IsSecured reports whether the raw label denotes a collateral-backed product.
// This is checked on the label itself, not on the canonical type.
func IsSecured(raw string) bool {
	label := strings.TrimSpace(raw)
	if securedLabels[label] {
		return true
	}
	return securedFolded[strings.ToLower(label)]
}

// DisplayName returns the human readable name of the type.
func DisplayName(t Type) string {
	if n, ok := displayNames[t]; ok {
		return n
	}
	return string(t)
}

// Types returns all canonical types in their canonical order.
func Types() []Type {
	list := make([]Type, len(types))
	copy(list, types)
	return list
}

// Valid reports whether t is a member of the canonical enumeration.
func (t Type) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

// Index returns the position of t in the canonical order, or -1.
func (t Type) Index() int {
	for i, v := range types {
		if v == t {
			return i
		}
	}
	return -1
}

// Sort orders the given types canonically, in place.
func Sort(list []Type) {
	slices.SortStableFunc(list, func(a, b Type) int {
		return rank(a) - rank(b)
	})
}

func rank(t Type) int {
	if i := t.Index(); i >= 0 {
		return i
	}
	return len(types)
}
