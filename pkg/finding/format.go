package finding

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mchmarny/bureau/pkg/feature"
)

// AmountFormatter renders a currency amount for finding text.
type AmountFormatter func(amount float64) string

// DefaultAmountFormatter renders whole rupees with Indian digit grouping,
// e.g. "INR 1,50,000".
func DefaultAmountFormatter() AmountFormatter {
	p := message.NewPrinter(language.MustParse("en-IN"))
	return func(amount float64) string {
		return p.Sprintf("INR %d", int64(feature.Round(amount, 0)))
	}
}
