package knowledgegraph

import "sort"

// addToActiveSetLocked inserts id into the active set (if absent) and evicts
// the lowest-relevance member (ties broken by oldest LastAccessed) once the
// set exceeds Config.MaxActive. Caller must hold g.mu.
func (g *Graph) addToActiveSetLocked(id string) {
	for _, existing := range g.activeSet {
		if existing == id {
			return
		}
	}
	g.activeSet = append(g.activeSet, id)
	if len(g.activeSet) <= g.Config.MaxActive {
		return
	}

	evictIdx := -1
	for i, candID := range g.activeSet {
		cand, ok := g.nodes[candID]
		if !ok {
			evictIdx = i
			break
		}
		if cand.Pinned {
			continue
		}
		if evictIdx == -1 {
			evictIdx = i
			continue
		}
		cur := g.nodes[g.activeSet[evictIdx]]
		if cur == nil || cur.Pinned {
			evictIdx = i
			continue
		}
		if cand.Relevance < cur.Relevance ||
			(cand.Relevance == cur.Relevance && cand.LastAccessed.Before(cur.LastAccessed)) {
			evictIdx = i
		}
	}
	if evictIdx >= 0 {
		g.activeSet = append(g.activeSet[:evictIdx], g.activeSet[evictIdx+1:]...)
	}
}

// ActiveSet returns the ids currently in the active set, most-relevant-first.
func (g *Graph) ActiveSet() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.activeSet))
	for _, id := range g.activeSet {
		if _, ok := g.nodes[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := g.nodes[ids[i]], g.nodes[ids[j]]
		if ni.Relevance != nj.Relevance {
			return ni.Relevance > nj.Relevance
		}
		return ids[i] < ids[j]
	})
	return ids
}

// ActiveSetTokens sums CachedTokens across the active set.
func (g *Graph) ActiveSetTokens() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, id := range g.activeSet {
		if n, ok := g.nodes[id]; ok {
			total += n.CachedTokens
		}
	}
	return total
}

// TotalTokens sums CachedTokens across every stored node.
func (g *Graph) TotalTokens() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.nodes {
		total += n.CachedTokens
	}
	return total
}

// SelectByTokenBudget greedily selects nodes in relevance-descending order
// (stable on ties via id), skipping any node that would push the total past
// budget or its type past its quota (a fraction of budget in typeQuotas)
// and continuing with the nodes after it.
// When budget is large enough to hold every node, the returned order is a
// strict prefix of the full relevance-sorted id list (spec §8 invariant:
// unconstrained selection is prefix-preserving).
func (g *Graph) SelectByTokenBudget(budget int, typeQuotas map[NodeType]float64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := g.sortedNodeIDsByRelevanceDesc()
	if budget <= 0 {
		return nil
	}

	typeCaps := make(map[NodeType]int, len(typeQuotas))
	for t, frac := range typeQuotas {
		typeCaps[t] = int(frac * float64(budget))
	}
	typeUsed := make(map[NodeType]int, len(typeQuotas))

	selected := make([]string, 0, len(ids))
	used := 0
	for _, id := range ids {
		n := g.nodes[id]
		cost := n.CachedTokens
		if used+cost > budget {
			continue
		}
		if cap, ok := typeCaps[n.Type]; ok {
			if typeUsed[n.Type]+cost > cap {
				continue
			}
		}
		selected = append(selected, id)
		used += cost
		typeUsed[n.Type] += cost
	}
	return selected
}
