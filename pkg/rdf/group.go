package rdf

// GroupTriples reorders triples so that all triples sharing a subject are
// adjacent, and within a subject all triples sharing a predicate are
// adjacent. Groups keep the order in which their subject (or predicate)
// first appeared and objects keep document order, so already grouped input
// is returned unchanged.
func GroupTriples(triples []*Triple) []*Triple {
	type predicateGroup struct {
		triples []*Triple
	}
	type subjectGroup struct {
		predicates []*predicateGroup
		index      map[string]int
	}

	var groups []*subjectGroup
	index := make(map[string]int)

	for _, t := range triples {
		sk := termKey(t.Subject)
		gi, ok := index[sk]
		if !ok {
			gi = len(groups)
			index[sk] = gi
			groups = append(groups, &subjectGroup{index: make(map[string]int)})
		}
		g := groups[gi]

		pk := termKey(t.Predicate)
		pi, ok := g.index[pk]
		if !ok {
			pi = len(g.predicates)
			g.index[pk] = pi
			g.predicates = append(g.predicates, &predicateGroup{})
		}
		g.predicates[pi].triples = append(g.predicates[pi].triples, t)
	}

	result := make([]*Triple, 0, len(triples))
	for _, g := range groups {
		for _, p := range g.predicates {
			result = append(result, p.triples...)
		}
	}
	return result
}

// termKey is a map key that distinguishes terms the way Equals does.
func termKey(t Term) string {
	switch v := t.(type) {
	case *Formula:
		return "{" + v.ID
	case *Literal:
		return v.String() + "^^" + v.DatatypeIRI()
	default:
		return t.String()
	}
}
