package search

import (
	"strconv"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// ParseThreshold reads an optional threshold query parameter. Empty means def.
func ParseThreshold(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > 100 {
		return 0, errors.Newf(errors.CodeValidation, "threshold must be an integer between 0 and 100, got %q", raw)
	}
	return v, nil
}

// ParseLimit reads an optional suggestion limit. Empty means
// DefaultSuggestionLimit.
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultSuggestionLimit, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > MaxSuggestionLimit {
		return 0, errors.Newf(errors.CodeValidation, "limit must be an integer between 1 and %d, got %q", MaxSuggestionLimit, raw)
	}
	return v, nil
}

// Head returns at most n leading elements of s.
func Head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

//Personal.AI order the ending
