package fuzzy

import "sort"

// Result holds a scored choice.
type Result struct {
	// Index is the position of the choice in the input slice.
	Index int
	// Choice is the scored string.
	Choice string
	// Score is the raw similarity in [0, 100].
	Score float64
}

// Extract scores every choice against query and returns the best limit
// results, highest first. Ties keep input order. A limit <= 0 returns all.
func Extract(query string, choices []string, scorer Scorer, limit int) []Result {
	if len(choices) == 0 {
		return nil
	}
	results := make([]Result, 0, len(choices))
	for i, c := range choices {
		results = append(results, Result{Index: i, Choice: c, Score: scorer(query, c)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

//Personal.AI order the ending
