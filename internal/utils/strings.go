package utils

import "strings"

// ParseCSV splits a comma-separated list (e.g. CORS_ORIGINS) into trimmed,
// non-empty values. Returns nil when nothing remains.
func ParseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
