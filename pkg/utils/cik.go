// Package utils provides small helpers shared across edgarintel:
// CIK formatting, address/state extraction, and display formatting.
package utils

import "strings"

// PadCIK pads a CIK number to 10 digits with leading zeros, the form the
// EDGAR submissions API expects (CIK0001067983.json).
func PadCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

// TrimCIK strips leading zeros from a CIK so that registry CIKs ("1067983")
// and feed CIKs ("0001067983") compare equal.
func TrimCIK(cik string) string {
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" && cik != "" {
		return "0"
	}
	return trimmed
}

// IsNumeric reports whether s is a non-empty string of ASCII digits.
func IsNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
