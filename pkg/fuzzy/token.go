package fuzzy

import (
	"sort"
	"strings"
)

// tokens splits s on whitespace.
func tokens(s string) []string {
	return strings.Fields(s)
}

func sortedJoin(words []string) string {
	cp := append([]string(nil), words...)
	sort.Strings(cp)
	return strings.Join(cp, " ")
}

func uniq(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// splitSets returns the sorted intersection and the two sorted differences
// of the token sets of a and b.
func splitSets(a, b string) (inter, onlyA, onlyB []string) {
	setA, setB := uniq(tokens(a)), uniq(tokens(b))
	interSet := map[string]struct{}{}
	aSet := map[string]struct{}{}
	bSet := map[string]struct{}{}
	for w := range setA {
		if _, ok := setB[w]; ok {
			interSet[w] = struct{}{}
		} else {
			aSet[w] = struct{}{}
		}
	}
	for w := range setB {
		if _, ok := setA[w]; !ok {
			bSet[w] = struct{}{}
		}
	}
	return keys(interSet), keys(aSet), keys(bSet)
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// TokenSortRatio compares a and b after sorting their whitespace tokens, so
// word order does not matter.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedJoin(tokens(a)), sortedJoin(tokens(b)))
}

// TokenSetRatio compares the shared token set against each side's full token
// set. A string whose tokens are a subset of the other's scores 100.
func TokenSetRatio(a, b string) float64 {
	if len(tokens(a)) == 0 || len(tokens(b)) == 0 {
		return 0
	}
	inter, onlyA, onlyB := splitSets(a, b)
	if len(inter) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sect := strings.Join(inter, " ")
	combinedA := joinNonEmpty(sect, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(sect, strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, Ratio(sect, combinedA), Ratio(sect, combinedB))
	}
	return best
}

// TokenRatio is the better of TokenSortRatio and TokenSetRatio. It rewards
// shared words regardless of order or extra words.
func TokenRatio(a, b string) float64 {
	return max(TokenSortRatio(a, b), TokenSetRatio(a, b))
}

// PartialTokenRatio runs PartialRatio over sorted tokens. Any shared token
// short-circuits to 100.
func PartialTokenRatio(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter, onlyA, onlyB := splitSets(a, b)
	if len(inter) > 0 {
		return 100
	}
	best := PartialRatio(sortedJoin(ta), sortedJoin(tb))
	if len(onlyA) == len(ta) && len(onlyB) == len(tb) {
		return best
	}
	return max(best, PartialRatio(strings.Join(onlyA, " "), strings.Join(onlyB, " ")))
}

//Personal.AI order the ending
