// Package fuzzy implements normalized string-similarity scorers on a 0-100
// scale: straight ratio, partial (best window) ratio, token-sort, token-set
// and the weighted ratio that combines them.
//
// All scorers are symmetric, return 100 for identical non-empty input and
// operate on runes. The base similarity is the Indel ratio
// 100 * 2*LCS(a, b) / (len(a) + len(b)).
package fuzzy

import (
	"math"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Scorer computes a similarity score in [0, 100] for two strings.
type Scorer func(a, b string) float64

// Ratio returns the Indel similarity of a and b. Two empty strings are
// identical (100); one empty string against a non-empty one scores 0.
func Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la+lb == 0 {
		return 100
	}
	if la == 0 || lb == 0 {
		return 0
	}
	if a == b {
		return 100
	}
	lcs := edlib.LCS(a, b)
	return 100 * float64(2*lcs) / float64(la+lb)
}

// PartialRatio scores the shorter string against every alignment with the
// longer one (full-length windows plus the partial prefix and suffix
// overhangs) and returns the best ratio. Equal-length inputs are aligned in
// both directions.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	switch {
	case len(ra) < len(rb):
		return partialAlign(ra, rb)
	case len(ra) > len(rb):
		return partialAlign(rb, ra)
	default:
		return max(partialAlign(ra, rb), partialAlign(rb, ra))
	}
}

func partialAlign(short, long []rune) float64 {
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	needle := string(short)
	n, m := len(short), len(long)
	best := 0.0
	consider := func(window []rune) bool {
		if s := Ratio(needle, string(window)); s > best {
			best = s
		}
		return best >= 100
	}

	for i := 0; i+n <= m; i++ {
		if consider(long[i : i+n]) {
			return 100
		}
	}
	for k := 1; k < n && k <= m; k++ {
		if consider(long[:k]) || consider(long[m-k:]) {
			return 100
		}
	}
	return best
}

// Round converts a score to the integer confidence reported to callers.
func Round(score float64) int {
	return int(math.Round(score))
}

//Personal.AI order the ending
