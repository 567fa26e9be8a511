package tradeline

import (
	"fmt"
	"strings"
)

// Bureau export columns used by the feature builder.
const (
	ColumnCRN             = "crn"
	ColumnLoanType        = "loan_type"
	ColumnLoanStatus      = "loan_status"
	ColumnSanctionAmount  = "sanction_amount"
	ColumnOutstanding     = "out_standing_balance"
	ColumnOverdueAmount   = "over_due_amount"
	ColumnVintage         = "tl_vin_1"
	ColumnLastPaymentDate = "last_payment_date"
	ColumnCreditLimit     = "creditlimit"
	ColumnSector          = "sector"
	ColumnDPDString       = "dpd_string"

	// DPDColumnCount is the number of sequential monthly dpdf columns.
	DPDColumnCount = 36

	StatusLive   = "Live"
	StatusClosed = "Closed"
)

var dpdColumns = func() []string {
	list := make([]string, DPDColumnCount)
	for i := range list {
		list[i] = fmt.Sprintf("dpdf%d", i+1)
	}
	return list
}()

// DPDColumns returns the monthly DPD flag column names, dpdf1 through dpdf36.
func DPDColumns() []string {
	list := make([]string, len(dpdColumns))
	copy(list, dpdColumns)
	return list
}

// Record is one raw tradeline row keyed by column name. It is read-only.
type Record map[string]string

// Get returns the raw value of the column, or an empty string when absent.
func (r Record) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

// LoanType returns the trimmed raw loan type label.
func (r Record) LoanType() string {
	return strings.TrimSpace(r.Get(ColumnLoanType))
}

// Status returns the trimmed loan status. Matching against StatusLive and
// StatusClosed is case-sensitive.
func (r Record) Status() string {
	return strings.TrimSpace(r.Get(ColumnLoanStatus))
}

// CRN returns the customer reference number, or 0 when it is missing or malformed.
func (r Record) CRN() int64 {
	return SafeInt64(r.Get(ColumnCRN), 0)
}

// ForCustomer returns the records belonging to the customer, in source order.
func ForCustomer(rows []Record, crn int64) []Record {
	list := make([]Record, 0)
	for _, row := range rows {
		if row.CRN() == crn {
			list = append(list, row)
		}
	}
	return list
}
