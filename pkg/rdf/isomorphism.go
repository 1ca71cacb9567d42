package rdf

import (
	"sort"
	"strings"
)

// AreGraphsIsomorphic checks if two sets of triples are isomorphic,
// accounting for blank node label differences. Triples are compared as
// multisets, so duplicates must match in number. Formulas compare by
// content, not by label.
func AreGraphsIsomorphic(expected, actual []*Triple) bool {
	if len(expected) != len(actual) {
		return false
	}

	expectedBlanks := blankNodeLabels(expected)
	actualBlanks := blankNodeLabels(actual)
	if len(expectedBlanks) != len(actualBlanks) {
		return false
	}

	if len(expectedBlanks) == 0 {
		return sameMultiset(expected, actual, nil)
	}

	expectedBlanks = sortByDegree(expectedBlanks, expected)
	actualDegrees := blankDegrees(actual)

	mapping := make(map[string]string)
	used := make(map[string]bool)
	return backtrack(expected, actual, expectedBlanks, actualBlanks, blankDegrees(expected), actualDegrees, mapping, used, 0)
}

func blankNodeLabels(triples []*Triple) []string {
	seen := make(map[string]bool)
	var visit func(Term)
	visit = func(term Term) {
		switch t := term.(type) {
		case *BlankNode:
			seen[t.ID] = true
		case *Formula:
			for _, inner := range t.Triples {
				visit(inner.Subject)
				visit(inner.Predicate)
				visit(inner.Object)
			}
		}
	}
	for _, triple := range triples {
		visit(triple.Subject)
		visit(triple.Predicate)
		visit(triple.Object)
	}

	result := make([]string, 0, len(seen))
	for label := range seen {
		result = append(result, label)
	}
	sort.Strings(result)
	return result
}

func blankDegrees(triples []*Triple) map[string]int {
	degrees := make(map[string]int)
	var visit func(Term)
	visit = func(term Term) {
		switch t := term.(type) {
		case *BlankNode:
			degrees[t.ID]++
		case *Formula:
			for _, inner := range t.Triples {
				visit(inner.Subject)
				visit(inner.Object)
			}
		}
	}
	for _, triple := range triples {
		visit(triple.Subject)
		visit(triple.Object)
	}
	return degrees
}

// sortByDegree puts highly connected blank nodes first so that wrong
// mappings are pruned early.
func sortByDegree(blanks []string, triples []*Triple) []string {
	degrees := blankDegrees(triples)
	sort.SliceStable(blanks, func(i, j int) bool {
		return degrees[blanks[i]] > degrees[blanks[j]]
	})
	return blanks
}

func backtrack(expected, actual []*Triple, expectedBlanks, actualBlanks []string,
	expectedDegrees, actualDegrees map[string]int,
	mapping map[string]string, used map[string]bool, index int) bool {

	if index == len(expectedBlanks) {
		return sameMultiset(expected, actual, mapping)
	}

	current := expectedBlanks[index]
	for _, candidate := range actualBlanks {
		if used[candidate] || expectedDegrees[current] != actualDegrees[candidate] {
			continue
		}

		mapping[current] = candidate
		used[candidate] = true

		if consistentSoFar(expected, actual, mapping) &&
			backtrack(expected, actual, expectedBlanks, actualBlanks, expectedDegrees, actualDegrees, mapping, used, index+1) {
			return true
		}

		delete(mapping, current)
		delete(used, candidate)
	}

	return false
}

// consistentSoFar checks that every expected triple whose blank nodes are
// all mapped has a counterpart in actual.
func consistentSoFar(expected, actual []*Triple, mapping map[string]string) bool {
	actualKeys := make(map[string]bool, len(actual))
	for _, triple := range actual {
		actualKeys[tripleKey(triple, nil)] = true
	}
	for _, triple := range expected {
		if !fullyMapped(triple.Subject, mapping) || !fullyMapped(triple.Predicate, mapping) || !fullyMapped(triple.Object, mapping) {
			continue
		}
		if !actualKeys[tripleKey(triple, mapping)] {
			return false
		}
	}
	return true
}

func fullyMapped(term Term, mapping map[string]string) bool {
	switch t := term.(type) {
	case *BlankNode:
		_, ok := mapping[t.ID]
		return ok
	case *Formula:
		for _, inner := range t.Triples {
			if !fullyMapped(inner.Subject, mapping) || !fullyMapped(inner.Predicate, mapping) || !fullyMapped(inner.Object, mapping) {
				return false
			}
		}
	}
	return true
}

func sameMultiset(expected, actual []*Triple, mapping map[string]string) bool {
	counts := make(map[string]int, len(expected))
	for _, triple := range expected {
		counts[tripleKey(triple, mapping)]++
	}
	for _, triple := range actual {
		key := tripleKey(triple, nil)
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	return true
}

// tripleKey renders a triple with blank nodes renamed through mapping. A
// nil mapping leaves labels as they are.
func tripleKey(triple *Triple, mapping map[string]string) string {
	return termKeyMapped(triple.Subject, mapping) + " " +
		termKeyMapped(triple.Predicate, mapping) + " " +
		termKeyMapped(triple.Object, mapping)
}

func termKeyMapped(term Term, mapping map[string]string) string {
	switch t := term.(type) {
	case *BlankNode:
		if mapped, ok := mapping[t.ID]; ok {
			return "_:" + mapped
		}
		return t.String()
	case *Formula:
		keys := make([]string, len(t.Triples))
		for i, inner := range t.Triples {
			keys[i] = tripleKey(inner, mapping)
		}
		sort.Strings(keys)
		return "{" + strings.Join(keys, " . ") + "}"
	default:
		return termKey(term)
	}
}
