package bureau

import "strconv"

// MaskCustomerID keeps only the last four digits of crn, e.g. ###4898.
func MaskCustomerID(crn int64) string {
	s := strconv.FormatInt(crn, 10)
	if len(s) > 4 {
		s = s[len(s)-4:]
	}
	return "###" + s
}
