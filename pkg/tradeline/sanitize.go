package tradeline

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	nullSentinel = "NULL"
	dateLayout   = "2006-01-02"
)

// Bureau exports are routinely partial, so none of the parsers below return
// errors: a value that cannot be read degrades to the supplied default.

func isMissing(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, nullSentinel)
}

func parseFloat(v string) (float64, bool) {
	if isMissing(v) {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if isHex(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isHex reports a hexadecimal literal such as 0x1p4, which ParseFloat accepts
// but bureau exports never carry.
func isHex(v string) bool {
	v = strings.TrimLeft(v, "+-")
	return len(v) > 1 && v[0] == '0' && (v[1] == 'x' || v[1] == 'X')
}

// SafeFloat parses v, returning def for empty, NULL or unparsable values.
func SafeFloat(v string, def float64) float64 {
	if f, ok := parseFloat(v); ok {
		return f
	}
	return def
}

// SafeInt parses v through a float and truncates toward zero,
// returning def for empty, NULL or unparsable values.
func SafeInt(v string, def int) int {
	f, ok := parseFloat(v)
	if !ok || f >= math.MaxInt || f <= math.MinInt {
		return def
	}
	return int(f)
}

// SafeInt64 is SafeInt with a fixed-width result, used for customer identifiers.
func SafeInt64(v string, def int64) int64 {
	f, ok := parseFloat(v)
	if !ok || f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int64(f)
}

// ParseDate parses a strict YYYY-MM-DD value. Sentinels and malformed
// values yield false.
func ParseDate(v string) (time.Time, bool) {
	if isMissing(v) {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
