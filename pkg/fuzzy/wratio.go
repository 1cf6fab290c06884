package fuzzy

import "unicode/utf8"

const (
	// unbaseScale discounts token-based scores against the straight ratio.
	unbaseScale = 0.95

	// partialLengthRatio is the length ratio from which partial matching is tried.
	partialLengthRatio = 1.5

	// longLengthRatio is the length ratio from which partial scores are
	// discounted harder.
	longLengthRatio = 8.0
)

// WRatio is the weighted ratio. Strings of similar length are compared whole
// and by tokens; when one string is at least 1.5x longer than the other the
// partial scorers are used instead, discounted by 0.9 (0.6 beyond 8x).
func WRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	lenRatio := float64(max(la, lb)) / float64(min(la, lb))
	best := Ratio(a, b)

	if lenRatio < partialLengthRatio {
		return max(best, TokenRatio(a, b)*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= longLengthRatio {
		partialScale = 0.6
	}
	best = max(best, PartialRatio(a, b)*partialScale)
	return max(best, PartialTokenRatio(a, b)*unbaseScale*partialScale)
}

//Personal.AI order the ending
