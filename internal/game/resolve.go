package game

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// foldCase case-folds s for comparison purposes. The teacher's go.mod
// already declared golang.org/x/text without using it; the resolver is
// where that dependency earns its keep instead of a bare strings.ToLower,
// so non-ASCII display names fold the way a Unicode-aware client expects.
func foldCase(s string) string {
	return foldCaser.String(s)
}

// ResolveResult is the outcome of a fuzzy resolution (§4.C).
type ResolveResult struct {
	OK       bool
	Err      error
	Resolved string
}

// Resolve implements the deterministic five-stage ladder: exact,
// case-insensitive exact, unique prefix, unique substring, suggestions.
func Resolve(query string, candidates []string) ResolveResult {
	q := strings.TrimSpace(query)
	if q == "" {
		return ResolveResult{Err: newValidationError("identifier required")}
	}

	// Stage 1: exact.
	for _, c := range candidates {
		if c == q {
			return ResolveResult{OK: true, Resolved: c}
		}
	}

	// Stage 2: case-insensitive exact.
	folded := foldCase(q)
	var ciMatches []string
	for _, c := range candidates {
		if foldCase(c) == folded {
			ciMatches = append(ciMatches, c)
		}
	}
	if len(ciMatches) == 1 {
		return ResolveResult{OK: true, Resolved: ciMatches[0]}
	}
	if len(ciMatches) > 1 {
		return ResolveResult{Err: ambiguousError(ciMatches)}
	}

	// Stage 3: unique case-insensitive prefix.
	var prefixMatches []string
	for _, c := range candidates {
		if strings.HasPrefix(foldCase(c), folded) {
			prefixMatches = append(prefixMatches, c)
		}
	}
	if len(prefixMatches) == 1 {
		return ResolveResult{OK: true, Resolved: prefixMatches[0]}
	}
	if len(prefixMatches) > 1 {
		return ResolveResult{Err: ambiguousError(prefixMatches)}
	}

	// Stage 4: unique case-insensitive substring.
	var substrMatches []string
	for _, c := range candidates {
		if strings.Contains(foldCase(c), folded) {
			substrMatches = append(substrMatches, c)
		}
	}
	if len(substrMatches) == 1 {
		return ResolveResult{OK: true, Resolved: substrMatches[0]}
	}
	if len(substrMatches) > 1 {
		return ResolveResult{Err: ambiguousError(substrMatches)}
	}

	// Stage 5: not found, with up to 5 closest suggestions.
	suggestions := closestSuggestions(q, candidates, 5)
	if len(suggestions) == 0 {
		return ResolveResult{Err: newNotFoundError(fmt.Sprintf("%q not found.", query))}
	}
	return ResolveResult{Err: newNotFoundError(fmt.Sprintf("%q not found. Did you mean: %s?", query, strings.Join(suggestions, ", ")))}
}

func ambiguousError(matches []string) error {
	sorted := append([]string(nil), matches...)
	sort.Strings(sorted)
	return newValidationError(fmt.Sprintf("Ambiguous. Did you mean: %s?", strings.Join(sorted, ", ")))
}

// closestSuggestions ranks candidates by Levenshtein distance to query
// (ascending), tie-broken lexicographically, and returns up to n names.
func closestSuggestions(query string, candidates []string, n int) []string {
	type scored struct {
		name string
		dist int
	}
	folded := foldCase(query)
	scoredList := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		scoredList = append(scoredList, scored{c, levenshtein(folded, foldCase(c))})
	}
	sort.Slice(scoredList, func(i, j int) bool {
		if scoredList[i].dist != scoredList[j].dist {
			return scoredList[i].dist < scoredList[j].dist
		}
		return scoredList[i].name < scoredList[j].name
	})
	if len(scoredList) > n {
		scoredList = scoredList[:n]
	}
	out := make([]string, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.name
	}
	return out
}

// levenshtein computes classic edit distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// ResolveRoomArg resolves "here" to the actor's current room id before
// falling through to fuzzy resolution over room ids (§4.C).
func ResolveRoomArg(query string, actorRoom RoomID, roomIDs []string) ResolveResult {
	if strings.EqualFold(strings.TrimSpace(query), "here") {
		return ResolveResult{OK: true, Resolved: string(actorRoom)}
	}
	return Resolve(query, roomIDs)
}
