package extract

import (
	"regexp"
	"strconv"
)

var nonDigitRegex = regexp.MustCompile(`[^0-9]`)

// cleanInt strips everything but digits and parses the remainder. This
// collapses thousands separators written as commas, periods, spaces or
// non-breaking spaces. A string with no digits yields absence, not zero.
func cleanInt(s string) (int, bool) {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
