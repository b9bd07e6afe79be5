package textutil

import "strings"

// ExtractYearSuffix splits a trailing "(YYYY)" or "[YYYY]" from a title.
// Returns the title without the suffix, the year digits, and whether a year
// was found. Mismatched bracket pairs and non-numeric content are ignored.
func ExtractYearSuffix(title string) (string, string, bool) {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < 6 {
		return trimmed, "", false
	}

	var open byte
	switch trimmed[len(trimmed)-1] {
	case ')':
		open = '('
	case ']':
		open = '['
	default:
		return trimmed, "", false
	}

	start := strings.LastIndexByte(trimmed, open)
	if start < 0 {
		return trimmed, "", false
	}

	inner := trimmed[start+1 : len(trimmed)-1]
	if len(inner) != 4 || !allDigits(inner) {
		return trimmed, "", false
	}

	return strings.TrimSpace(trimmed[:start]), inner, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
