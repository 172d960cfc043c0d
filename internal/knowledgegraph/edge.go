package knowledgegraph

// maxEdgeStrength caps merged-edge strength (spec §8 scenario: 25 repeated
// inserts of the same edge saturate at 10.0, not grow unbounded).
const maxEdgeStrength = 10.0

// edgeMergeIncrement is the fixed amount a duplicate (source, target,
// relationship) insert adds to an existing edge's strength (spec §4.B,
// §8 invariant 3). It does not depend on the strength argument the caller
// passed for that particular call — only the first insert's strength seeds
// the edge; every later insert of the same triple adds exactly this much.
const edgeMergeIncrement = 0.5

// AddEdge inserts an edge, or — if one already exists for the same
// (source, target, relationship) triple — adds edgeMergeIncrement to the
// existing edge's strength, capped at maxEdgeStrength. The strength
// argument only seeds the edge on its first insert.
func (g *Graph) AddEdge(source, target, relationship string, strength float64) error {
	if source == "" || target == "" || relationship == "" {
		return &Error{Kind: KindInvalidArgument, Extra: "source, target, and relationship are required"}
	}
	if strength <= 0 {
		strength = 1.0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[source]; !ok {
		return errNotFound(source)
	}
	if _, ok := g.nodes[target]; !ok {
		return errNotFound(target)
	}

	for _, e := range g.edgesBySource[source] {
		if e.Target == target && e.Relationship == relationship {
			e.Strength += edgeMergeIncrement
			if e.Strength > maxEdgeStrength {
				e.Strength = maxEdgeStrength
			}
			return nil
		}
	}

	e := &Edge{Source: source, Target: target, Relationship: relationship, Strength: strength}
	if e.Strength > maxEdgeStrength {
		e.Strength = maxEdgeStrength
	}
	g.edgesBySource[source] = append(g.edgesBySource[source], e)
	g.edgesTo[target] = append(g.edgesTo[target], e)
	return nil
}

// EdgesFrom returns a copy of the edges originating at source.
func (g *Graph) EdgesFrom(source string) []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Edge, 0, len(g.edgesBySource[source]))
	for _, e := range g.edgesBySource[source] {
		out = append(out, *e)
	}
	return out
}

// EdgesTo returns a copy of the edges terminating at target.
func (g *Graph) EdgesTo(target string) []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Edge, 0, len(g.edgesTo[target]))
	for _, e := range g.edgesTo[target] {
		out = append(out, *e)
	}
	return out
}
