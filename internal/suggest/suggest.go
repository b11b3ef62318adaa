// Package suggest finds close matches for a mistyped name.
package suggest

import (
	"sort"
	"strings"
)

// threshold is the minimum similarity for a candidate to be offered.
const threshold = 0.5

// Similar returns up to limit candidates resembling target, best first.
func Similar(target string, candidates []string, limit int) []string {
	if target == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	matches := make([]scored, 0, len(candidates))
	for _, name := range candidates {
		if score := similarity(target, name); score > threshold {
			matches = append(matches, scored{name: name, score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score == matches[j].score {
			return matches[i].name < matches[j].name
		}
		return matches[i].score > matches[j].score
	})

	names := make([]string, 0, limit)
	for _, m := range matches {
		if len(names) == limit {
			break
		}
		names = append(names, m.name)
	}
	return names
}

// similarity scores how close two names are: 1 for equal, 0.9 for a
// prefix, otherwise Levenshtein distance scaled by the longer name.
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	if strings.HasPrefix(b, a) {
		return 0.9
	}
	longest := max(len(a), len(b))
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein is edit distance over bytes; the names here are ASCII.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
