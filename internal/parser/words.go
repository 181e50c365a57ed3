package parser

import "strings"

// ContainsWord reports whether needle occurs in haystack as a whole word,
// bounded on both sides by whitespace or the ends of haystack.
// An empty needle never matches.
func ContainsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for from := 0; from+len(needle) <= len(haystack); {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if (start == 0 || isSpace(haystack[start-1])) &&
			(end == len(haystack) || isSpace(haystack[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
