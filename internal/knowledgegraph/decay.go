package knowledgegraph

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// ApplyDecay multiplies every non-pinned node's relevance by
// exp(-decay_rate * days_since_last_accessed), floored at minRelevance.
// Pinned nodes are immune (spec §3 invariant).
func (g *Graph) ApplyDecay(now time.Time) {
	g.ApplyDecayProtecting(now, nil)
}

// ApplyDecayProtecting is ApplyDecay with an extra set of node ids shielded
// from this sweep in addition to permanently pinned nodes.
func (g *Graph) ApplyDecayProtecting(now time.Time, pinnedIDs []string) {
	protected := make(map[string]bool, len(pinnedIDs))
	for _, id := range pinnedIDs {
		protected[id] = true
	}

	g.mu.Lock()
	g.applyDecayLocked(now, protected)
	g.mu.Unlock()

	log.Debug().Str("agent_id", g.AgentID).Time("decayed_at", now).
		Msg("knowledge_graph_decay_applied")
}

func (g *Graph) applyDecayLocked(now time.Time, protected map[string]bool) {
	for id, n := range g.nodes {
		if n.Pinned || protected[id] {
			continue
		}
		days := now.Sub(n.LastAccessed).Hours() / 24
		if days <= 0 {
			continue
		}
		factor := math.Exp(-g.Config.DecayRate * days)
		n.Relevance = math.Max(minRelevance, n.Relevance*factor)
	}
	g.lastDecayAt = now
}

// PruneAndArchive removes non-pinned nodes whose relevance has fallen
// strictly below threshold, returning the removed nodes (copies) so callers
// can archive them before they are gone for good. threshold <= 0 falls back
// to Config.PruneThreshold, the documented default (spec §4.B).
func (g *Graph) PruneAndArchive(threshold float64) []Node {
	if threshold <= 0 {
		threshold = g.Config.PruneThreshold
	}
	g.mu.Lock()
	removed := g.pruneLocked(threshold)
	g.mu.Unlock()

	if len(removed) > 0 {
		log.Info().Str("agent_id", g.AgentID).Int("pruned_count", len(removed)).
			Float64("threshold", threshold).Msg("knowledge_graph_nodes_pruned")
	}
	return removed
}

func (g *Graph) pruneLocked(threshold float64) []Node {
	var removed []Node
	for id, n := range g.nodes {
		if n.Pinned {
			continue
		}
		if n.Relevance >= threshold {
			continue
		}
		removed = append(removed, *n)
		delete(g.nodes, id)
		g.removeFromActiveSetLocked(id)
		g.removeEdgesForLocked(id)
	}
	return removed
}

// overCapacityLocked reports whether the graph has grown past the bounds
// DecayAndArchive treats as "needs maintenance": more active nodes than
// MaxActive, or any single type past MaxNodesPerType. Caller must hold g.mu.
func (g *Graph) overCapacityLocked() bool {
	if len(g.activeSet) > g.Config.MaxActive {
		return true
	}
	counts := make(map[NodeType]int)
	for _, n := range g.nodes {
		counts[n.Type]++
		if counts[n.Type] > g.Config.MaxNodesPerType {
			return true
		}
	}
	return false
}

// DecayAndArchive runs ApplyDecay followed by PruneAndArchive (at the
// default threshold) in one locked pass, as the periodic maintenance step
// spec §4.B describes. It is a no-op — returning nil without touching a
// single node — unless the graph is currently over capacity or force is
// true; periodic administrative sweeps (e.g. Handle.Maintain's ticker) pass
// force: true since they are themselves the explicit trigger.
func (g *Graph) DecayAndArchive(now time.Time, force bool) []Node {
	g.mu.Lock()
	if !force && !g.overCapacityLocked() {
		g.mu.Unlock()
		log.Debug().Str("agent_id", g.AgentID).Msg("knowledge_graph_decay_skipped_under_capacity")
		return nil
	}
	g.applyDecayLocked(now, nil)
	removed := g.pruneLocked(g.Config.PruneThreshold)
	g.mu.Unlock()

	log.Info().Str("agent_id", g.AgentID).Int("pruned_count", len(removed)).Bool("forced", force).
		Msg("knowledge_graph_decay_and_archive_ran")
	return removed
}

func (g *Graph) removeFromActiveSetLocked(id string) {
	for i, existing := range g.activeSet {
		if existing == id {
			g.activeSet = append(g.activeSet[:i], g.activeSet[i+1:]...)
			return
		}
	}
}

func (g *Graph) removeEdgesForLocked(id string) {
	delete(g.edgesBySource, id)
	delete(g.edgesTo, id)
	for src, edges := range g.edgesBySource {
		filtered := edges[:0]
		for _, e := range edges {
			if e.Target != id {
				filtered = append(filtered, e)
			}
		}
		g.edgesBySource[src] = filtered
	}
	for tgt, edges := range g.edgesTo {
		filtered := edges[:0]
		for _, e := range edges {
			if e.Source != id {
				filtered = append(filtered, e)
			}
		}
		g.edgesTo[tgt] = filtered
	}
}
