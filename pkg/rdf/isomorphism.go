package rdf

import (
	"fmt"
	"sort"
)

// AreGraphsIsomorphic reports whether two triple sets are isomorphic up to
// blank node relabeling: a bijection between their blank nodes exists under
// which the sets are identical. Triples are lifted to quads in the default
// graph so the search runs through the single quad-level implementation
// below rather than a second copy of the same backtracking logic.
func AreGraphsIsomorphic(expected, actual []*Triple) bool {
	return AreQuadsIsomorphic(asDefaultGraphQuads(expected), asDefaultGraphQuads(actual))
}

func asDefaultGraphQuads(triples []*Triple) []*Quad {
	quads := make([]*Quad, len(triples))
	for i, t := range triples {
		quads[i] = NewQuad(t.Subject, t.Predicate, t.Object, NewDefaultGraph())
	}
	return quads
}

// AreQuadsIsomorphic reports whether two quad sets are isomorphic up to
// blank node relabeling, treating graph names as part of the term pattern
// being matched (so a blank node used as a graph name must map consistently
// with its occurrences as a subject or object elsewhere in the set).
func AreQuadsIsomorphic(expected, actual []*Quad) bool {
	if len(expected) != len(actual) {
		return false
	}

	expectedBlanks := blankLabelsIn(expected)
	actualBlanks := blankLabelsIn(actual)
	if len(expectedBlanks) != len(actualBlanks) {
		return false
	}

	if len(expectedBlanks) == 0 {
		return sameQuadSet(expected, actual, nil)
	}

	// Matching highly-connected blank nodes first prunes the search space
	// fastest, since their constraints rule out the most candidates early.
	expectedBlanks = sortByDegree(expectedBlanks, expected)
	actualBlanks = sortByDegree(actualBlanks, actual)

	search := &isoSearch{
		expected:      expected,
		actual:        actual,
		expectedOrder: expectedBlanks,
		candidates:    actualBlanks,
		mapping:       make(map[string]string, len(expectedBlanks)),
		used:          make(map[string]bool, len(expectedBlanks)),
	}
	return search.run(0)
}

// isoSearch holds the state of one backtracking search for a blank-node
// bijection between expected and actual.
type isoSearch struct {
	expected, actual          []*Quad
	expectedOrder, candidates []string
	mapping                   map[string]string
	used                      map[string]bool
}

func (s *isoSearch) run(index int) bool {
	if index == len(s.expectedOrder) {
		return sameQuadSet(s.expected, s.actual, s.mapping)
	}

	current := s.expectedOrder[index]
	for _, candidate := range s.candidates {
		if s.used[candidate] {
			continue
		}

		s.mapping[current] = candidate
		s.used[candidate] = true

		if s.consistentSoFar() && s.run(index+1) {
			return true
		}

		delete(s.mapping, current)
		delete(s.used, candidate)
	}

	return false
}

// consistentSoFar prunes the search early: any expected quad whose blank
// nodes are all already mapped must already have a matching counterpart in
// actual, or this partial mapping can never lead to a full isomorphism.
func (s *isoSearch) consistentSoFar() bool {
	for _, quad := range s.expected {
		if !isTermFullyMapped(quad.Subject, s.mapping) ||
			!isTermFullyMapped(quad.Object, s.mapping) ||
			!isTermFullyMapped(quad.Graph, s.mapping) {
			continue
		}
		if !quadSetContains(s.actual, quadKey(quad, s.mapping)) {
			return false
		}
	}
	return true
}

func quadSetContains(quads []*Quad, key string) bool {
	for _, q := range quads {
		if quadKey(q, nil) == key {
			return true
		}
	}
	return false
}

// sameQuadSet reports whether expected (after applying mapping, if any) and
// actual contain exactly the same quads, ignoring order.
func sameQuadSet(expected, actual []*Quad, mapping map[string]string) bool {
	expectedSet := make(map[string]bool, len(expected))
	for _, q := range expected {
		expectedSet[quadKey(q, mapping)] = true
	}

	actualSet := make(map[string]bool, len(actual))
	for _, q := range actual {
		actualSet[quadKey(q, nil)] = true
	}

	if len(expectedSet) != len(actualSet) {
		return false
	}
	for key := range expectedSet {
		if !actualSet[key] {
			return false
		}
	}
	return true
}

// blankLabelsIn collects the distinct blank node labels appearing anywhere
// in quads, including nested inside TripleTerm/QuotedTriple/ReifiedTriple
// components, in sorted order for deterministic search traversal.
func blankLabelsIn(quads []*Quad) []string {
	blanks := make(map[string]bool)
	for _, q := range quads {
		collectBlankLabels(q.Subject, blanks)
		collectBlankLabels(q.Object, blanks)
		collectBlankLabels(q.Graph, blanks)
	}

	result := make([]string, 0, len(blanks))
	for label := range blanks {
		result = append(result, label)
	}
	sort.Strings(result)
	return result
}

func collectBlankLabels(term Term, blanks map[string]bool) {
	switch t := term.(type) {
	case *BlankNode:
		blanks[t.ID] = true
	case *TripleTerm:
		collectBlankLabels(t.Subject, blanks)
		collectBlankLabels(t.Predicate, blanks)
		collectBlankLabels(t.Object, blanks)
	case *QuotedTriple:
		collectBlankLabels(t.Subject, blanks)
		collectBlankLabels(t.Predicate, blanks)
		collectBlankLabels(t.Object, blanks)
	case *ReifiedTriple:
		collectBlankLabels(t.Identifier, blanks)
		if t.Triple != nil {
			collectBlankLabels(t.Triple.Subject, blanks)
			collectBlankLabels(t.Triple.Predicate, blanks)
			collectBlankLabels(t.Triple.Object, blanks)
		}
	}
}

func countBlankOccurrences(term Term, degrees map[string]int) {
	switch t := term.(type) {
	case *BlankNode:
		degrees[t.ID]++
	case *TripleTerm:
		countBlankOccurrences(t.Subject, degrees)
		countBlankOccurrences(t.Predicate, degrees)
		countBlankOccurrences(t.Object, degrees)
	case *QuotedTriple:
		countBlankOccurrences(t.Subject, degrees)
		countBlankOccurrences(t.Predicate, degrees)
		countBlankOccurrences(t.Object, degrees)
	case *ReifiedTriple:
		countBlankOccurrences(t.Identifier, degrees)
		if t.Triple != nil {
			countBlankOccurrences(t.Triple.Subject, degrees)
			countBlankOccurrences(t.Triple.Predicate, degrees)
			countBlankOccurrences(t.Triple.Object, degrees)
		}
	}
}

// sortByDegree orders blanks by how many times each appears across quads,
// descending, so the backtracking search tries the most-constrained blank
// nodes first.
func sortByDegree(blanks []string, quads []*Quad) []string {
	degrees := make(map[string]int, len(blanks))
	for _, b := range blanks {
		degrees[b] = 0
	}
	for _, q := range quads {
		countBlankOccurrences(q.Subject, degrees)
		countBlankOccurrences(q.Object, degrees)
		countBlankOccurrences(q.Graph, degrees)
	}
	sort.Slice(blanks, func(i, j int) bool {
		return degrees[blanks[i]] > degrees[blanks[j]]
	})
	return blanks
}

// isTermFullyMapped reports whether every blank node appearing in term
// (including nested inside RDF-star constructs) already has an entry in
// mapping.
func isTermFullyMapped(term Term, mapping map[string]string) bool {
	switch t := term.(type) {
	case *BlankNode:
		_, ok := mapping[t.ID]
		return ok
	case *TripleTerm:
		return isTermFullyMapped(t.Subject, mapping) &&
			isTermFullyMapped(t.Predicate, mapping) &&
			isTermFullyMapped(t.Object, mapping)
	case *QuotedTriple:
		return isTermFullyMapped(t.Subject, mapping) &&
			isTermFullyMapped(t.Predicate, mapping) &&
			isTermFullyMapped(t.Object, mapping)
	case *ReifiedTriple:
		if !isTermFullyMapped(t.Identifier, mapping) {
			return false
		}
		if t.Triple != nil {
			return isTermFullyMapped(t.Triple.Subject, mapping) &&
				isTermFullyMapped(t.Triple.Predicate, mapping) &&
				isTermFullyMapped(t.Triple.Object, mapping)
		}
		return true
	default:
		return true
	}
}

// quadKey renders a quad as a comparable string, substituting blank node
// labels through mapping when one is given (nil means compare labels as-is).
func quadKey(quad *Quad, mapping map[string]string) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		termKeyString(quad.Subject, mapping),
		termKeyString(quad.Predicate, mapping),
		termKeyString(quad.Object, mapping),
		termKeyString(quad.Graph, mapping))
}

// termKeyString renders term for use inside a quadKey, applying mapping to
// any blank node labels it contains (including nested ones).
func termKeyString(term Term, mapping map[string]string) string {
	if mapping == nil {
		return term.String()
	}

	switch t := term.(type) {
	case *BlankNode:
		if mapped, ok := mapping[t.ID]; ok {
			return "_:" + mapped
		}
		return term.String()
	case *TripleTerm:
		return fmt.Sprintf("<<( %s %s %s )>>",
			termKeyString(t.Subject, mapping),
			termKeyString(t.Predicate, mapping),
			termKeyString(t.Object, mapping))
	case *QuotedTriple:
		return fmt.Sprintf("<< %s %s %s >>",
			termKeyString(t.Subject, mapping),
			termKeyString(t.Predicate, mapping),
			termKeyString(t.Object, mapping))
	case *ReifiedTriple:
		if t.Triple != nil {
			return fmt.Sprintf("<< %s %s %s ~ %s >>",
				termKeyString(t.Triple.Subject, mapping),
				termKeyString(t.Triple.Predicate, mapping),
				termKeyString(t.Triple.Object, mapping),
				termKeyString(t.Identifier, mapping))
		}
		return term.String()
	default:
		return term.String()
	}
}
