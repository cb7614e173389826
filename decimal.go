package maprender

import (
	"regexp"
	"strconv"
)

var (
	reExcessDecimals = regexp.MustCompile(`([0-9]+\.[0-9])[0-9]+`)
	reZeroDecimal    = regexp.MustCompile(`([0-9]+)\.0\b`)
)

// TrimDecimals cuts every decimal number in data to one decimal place and drops a trailing ".0", so that serialized output stays compact and deterministic.
func TrimDecimals(data string) string {
	data = reExcessDecimals.ReplaceAllString(data, "$1")
	return reZeroDecimal.ReplaceAllString(data, "$1")
}

// FormatDecimal formats f rounded to one decimal place, without a trailing ".0".
func FormatDecimal(f float64) string {
	s := TrimDecimals(strconv.FormatFloat(f, 'f', 1, 64))
	if s == "-0" {
		return "0"
	}
	return s
}
