// Package strings provides string slice helpers for configuration values.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element, drops empty ones and keeps the first
// occurrence of each remaining value, in input order. It turns a loosely
// written list such as "k1:9092, k2:9092,,k1:9092" into a clean one.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
