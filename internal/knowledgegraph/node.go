package knowledgegraph

import (
	"time"

	"cogmem/internal/tokenbudget"
)

// NodeSpec is the input to AddNode.
type NodeSpec struct {
	Type       NodeType
	Content    string
	Relevance  float64 // default 0.5 when zero
	Confidence float64 // default 0.5 when zero
	Pinned     bool
	Metadata   map[string]any
	Embedding  []float32
	SkipDedup  bool
}

// AddNode inserts spec as a new node, or — unless SkipDedup is set — boosts
// and returns an existing node sharing the same (type, lower(content)) key.
// Enforces the per-type quota (spec §4.B, §3 invariants).
func (g *Graph) AddNode(spec NodeSpec) (string, error) {
	if spec.Type == "" {
		return "", errMissingType()
	}
	if !validNodeTypes[spec.Type] {
		return "", errInvalidType(spec.Type)
	}
	if spec.Content == "" {
		return "", errMissingContent()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !spec.SkipDedup {
		key := normalizeKey(spec.Type, spec.Content)
		for id, n := range g.nodes {
			if normalizeKey(n.Type, n.Content) == key {
				n.Relevance = clampRelevance(n.Relevance + 0.1)
				return id, nil
			}
		}
	}

	if g.countByTypeLocked(spec.Type) >= g.Config.MaxNodesPerType {
		return "", errQuotaExceeded(spec.Type)
	}

	relevance := spec.Relevance
	if relevance == 0 {
		relevance = 0.5
	}
	relevance = clampRelevance(relevance)

	confidence := spec.Confidence
	if confidence == 0 {
		confidence = 0.5
	}

	now := time.Now().UTC()
	n := &Node{
		ID:           newNodeID(),
		Type:         spec.Type,
		Content:      spec.Content,
		Relevance:    relevance,
		Confidence:   confidence,
		AccessCount:  0,
		LastAccessed: now,
		Pinned:       spec.Pinned,
		Metadata:     copyMetadata(spec.Metadata),
		Embedding:    spec.Embedding,
	}
	n.CachedTokens = tokenbudget.EstimateTokens(n.Content)

	g.nodes[n.ID] = n
	g.addToActiveSetLocked(n.ID)
	return n.ID, nil
}

// GetNode returns a pointer to a shallow copy of the stored node: setting
// its fields does not change the graph, but its Metadata map and Embedding
// slice share storage with the stored node.
func (g *Graph) GetNode(id string) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, errNotFound("node")
	}
	cp := *n
	return &cp, nil
}

// Reinforce increments access_count, boosts relevance by 0.1 (capped),
// updates last_accessed, and re-enters the node into the active set.
func (g *Graph) Reinforce(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return errNotFound("node")
	}
	n.AccessCount++
	n.Relevance = clampRelevance(n.Relevance + 0.1)
	n.LastAccessed = time.Now().UTC()
	g.addToActiveSetLocked(id)
	return nil
}

// BoostNode adjusts relevance by delta, clamped to [0.01, 1.0].
func (g *Graph) BoostNode(id string, delta float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return errNotFound("node")
	}
	n.Relevance = clampRelevance(n.Relevance + delta)
	return nil
}

func (g *Graph) countByTypeLocked(t NodeType) int {
	count := 0
	for _, n := range g.nodes {
		if n.Type == t {
			count++
		}
	}
	return count
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
