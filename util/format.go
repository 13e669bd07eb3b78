package util

import "strconv"

// FormatFloat formats f with the minimal number of digits needed to parse it back exactly
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
