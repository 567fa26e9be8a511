package feature

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mchmarny/bureau/pkg/loan"
	"github.com/mchmarny/bureau/pkg/tradeline"
)

const (
	utilizationPrecision = 4
	vintagePrecision     = 1
)

var (
	// DefaultOnUsSectors are the lender sectors counted as on-us.
	DefaultOnUsSectors = []string{"KOTAK BANK", "KOTAK PRIME"}

	eventPattern = regexp.MustCompile(`[A-Z]{3}`)

	// standard dpd_string markers, not forced events
	standardMarkers = map[string]bool{
		"STD": true,
		"XXX": true,
	}
)

// Options control the inputs of Build that do not come from the tradelines.
type Options struct {
	// AsOf is the evaluation date for months_since_last_payment.
	AsOf time.Time

	// OnUsSectors lists the sector values counted as on-us, compared after trimming.
	OnUsSectors []string
}

// DefaultOptions returns options evaluated as of now with the default on-us sectors.
func DefaultOptions() Options {
	return Options{
		AsOf:        time.Now().UTC(),
		OnUsSectors: DefaultOnUsSectors,
	}
}

func (o Options) onUs() map[string]bool {
	m := make(map[string]bool, len(o.OnUsSectors))
	for _, s := range o.OnUsSectors {
		m[strings.TrimSpace(s)] = true
	}
	return m
}

// Group buckets the records by the canonical type of their raw loan_type label.
// Source order is preserved within each bucket.
func Group(lines []tradeline.Record) map[loan.Type][]tradeline.Record {
	grouped := make(map[loan.Type][]tradeline.Record)
	for _, line := range lines {
		t := loan.Normalize(line.LoanType())
		grouped[t] = append(grouped[t], line)
	}
	return grouped
}

// BuildAll builds one vector per loan type present in lines.
// No lines yields an empty, non-nil map.
func BuildAll(lines []tradeline.Record, opts Options) map[loan.Type]*Vector {
	vectors := make(map[loan.Type]*Vector)
	for t, group := range Group(lines) {
		vectors[t] = Build(t, group, opts)
	}
	return vectors
}

// Build computes the feature vector for tradelines already grouped under t.
func Build(t loan.Type, lines []tradeline.Record, opts Options) *Vector {
	v := &Vector{
		LoanType:         t,
		LoanCount:        len(lines),
		ForcedEventFlags: forcedEvents(lines),
		MaxDPD:           maxDPD(lines),
	}

	onUs := opts.onUs()
	var vintageSum float64
	var vintageCount int

	for _, line := range lines {
		if loan.IsSecured(line.LoanType()) {
			v.SecuredCount++
		}

		v.TotalSanctionedAmount += tradeline.SafeFloat(line.Get(tradeline.ColumnSanctionAmount), 0)
		v.TotalOutstandingAmount += tradeline.SafeFloat(line.Get(tradeline.ColumnOutstanding), 0)
		v.OverdueAmount += tradeline.SafeFloat(line.Get(tradeline.ColumnOverdueAmount), 0)

		if vin := tradeline.SafeFloat(line.Get(tradeline.ColumnVintage), 0); vin > 0 {
			vintageSum += vin
			vintageCount++
		}

		switch line.Status() {
		case tradeline.StatusLive:
			v.LiveCount++
		case tradeline.StatusClosed:
			v.ClosedCount++
		}

		if onUs[strings.TrimSpace(line.Get(tradeline.ColumnSector))] {
			v.OnUsCount++
		}
	}

	v.Secured = v.LoanCount > 0 && v.SecuredCount == v.LoanCount
	v.OffUsCount = v.LoanCount - v.OnUsCount
	v.DelinquencyFlag = v.MaxDPD != nil && *v.MaxDPD > 0

	if vintageCount > 0 {
		v.AvgVintageMonths = Round(vintageSum/float64(vintageCount), vintagePrecision)
	}

	if t == loan.CC {
		v.UtilizationRatio = utilization(lines)
	}

	v.MonthsSinceLastPayment = monthsSinceLastPayment(lines, opts.AsOf)

	return v
}

func maxDPD(lines []tradeline.Record) *int {
	var highest int
	found := false
	cols := tradeline.DPDColumns()
	for _, line := range lines {
		for _, col := range cols {
			if d := tradeline.SafeInt(line.Get(col), 0); d > 0 {
				found = true
				highest = max(highest, d)
			}
		}
	}
	if !found {
		return nil
	}
	return &highest
}

func utilization(lines []tradeline.Record) *float64 {
	var outstanding, limit float64
	for _, line := range lines {
		if line.Status() != tradeline.StatusLive {
			continue
		}
		l := tradeline.SafeFloat(line.Get(tradeline.ColumnCreditLimit), 0)
		if l <= 0 {
			continue
		}
		limit += l
		outstanding += tradeline.SafeFloat(line.Get(tradeline.ColumnOutstanding), 0)
	}
	if limit <= 0 {
		return nil
	}
	r := Round(outstanding/limit, utilizationPrecision)
	return &r
}

func forcedEvents(lines []tradeline.Record) []string {
	seen := make(map[string]bool)
	list := make([]string, 0)
	for _, line := range lines {
		for _, m := range eventPattern.FindAllString(line.Get(tradeline.ColumnDPDString), -1) {
			if standardMarkers[m] || seen[m] {
				continue
			}
			seen[m] = true
			list = append(list, m)
		}
	}
	slices.Sort(list)
	return list
}

func monthsSinceLastPayment(lines []tradeline.Record, asOf time.Time) *int {
	var latest time.Time
	found := false
	for _, line := range lines {
		d, ok := tradeline.ParseDate(line.Get(tradeline.ColumnLastPaymentDate))
		if !ok {
			continue
		}
		if !found || d.After(latest) {
			latest = d
			found = true
		}
	}
	if !found {
		return nil
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	months := (asOf.Year()-latest.Year())*12 + int(asOf.Month()) - int(latest.Month())
	if months < 0 {
		months = 0
	}
	return &months
}

// Round rounds v to places decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
