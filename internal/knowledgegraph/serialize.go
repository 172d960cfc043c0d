package knowledgegraph

import "time"

// schemaVersion is bumped whenever ToMap's shape changes in a
// backward-incompatible way. FromMap fills in defaults for any field
// missing from an older payload.
const schemaVersion = 2

// ToMap serializes the graph into a plain map suitable for JSON/YAML
// encoding or handing to a durable store outside this package.
func (g *Graph) ToMap() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := make([]map[string]any, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, map[string]any{
			"id":            n.ID,
			"type":          string(n.Type),
			"content":       n.Content,
			"relevance":     n.Relevance,
			"confidence":    n.Confidence,
			"access_count":  n.AccessCount,
			"last_accessed": n.LastAccessed.Format(time.RFC3339),
			"pinned":        n.Pinned,
			"metadata":      n.Metadata,
			"cached_tokens": n.CachedTokens,
		})
	}

	var edges []map[string]any
	for _, list := range g.edgesBySource {
		for _, e := range list {
			edges = append(edges, map[string]any{
				"source":       e.Source,
				"target":       e.Target,
				"relationship": e.Relationship,
				"strength":     e.Strength,
			})
		}
	}

	pendingFacts := make([]map[string]any, 0, len(g.pendingFacts))
	for _, p := range g.pendingFacts {
		pendingFacts = append(pendingFacts, pendingItemToMap(p))
	}
	pendingLearnings := make([]map[string]any, 0, len(g.pendingLearnings))
	for _, p := range g.pendingLearnings {
		pendingLearnings = append(pendingLearnings, pendingItemToMap(p))
	}

	out := map[string]any{
		"schema_version":    schemaVersion,
		"agent_id":          g.AgentID,
		"nodes":             nodes,
		"edges":             edges,
		"active_set":        append([]string(nil), g.activeSet...),
		"pending_facts":     pendingFacts,
		"pending_learnings": pendingLearnings,
	}
	if !g.lastDecayAt.IsZero() {
		out["last_decay_at"] = g.lastDecayAt.Format(time.RFC3339)
	}
	return out
}

func pendingItemToMap(p PendingItem) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"content":    p.Content,
		"metadata":   p.Metadata,
		"created_at": p.CreatedAt.Format(time.RFC3339),
	}
}

// FromMap restores a graph from ToMap's output (or an older-version
// payload lacking fields introduced since; those fields take their
// documented defaults). Both direct ToMap output and JSON-decoded payloads
// (where slices arrive as []any and ints as float64) are accepted.
func FromMap(data map[string]any, cfg Config) *Graph {
	agentID, _ := data["agent_id"].(string)
	g := New(agentID, cfg)

	for _, rn := range mapSlice(data["nodes"]) {
		n := nodeFromMap(rn)
		g.nodes[n.ID] = n
	}
	for _, re := range mapSlice(data["edges"]) {
		e := edgeFromMap(re)
		g.edgesBySource[e.Source] = append(g.edgesBySource[e.Source], e)
		g.edgesTo[e.Target] = append(g.edgesTo[e.Target], e)
	}
	if rawActive := stringSlice(data["active_set"]); rawActive != nil {
		g.activeSet = rawActive
	} else {
		for id := range g.nodes {
			g.activeSet = append(g.activeSet, id)
		}
	}
	for _, rp := range mapSlice(data["pending_facts"]) {
		g.pendingFacts = append(g.pendingFacts, pendingItemFromMap(rp))
	}
	for _, rp := range mapSlice(data["pending_learnings"]) {
		g.pendingLearnings = append(g.pendingLearnings, pendingItemFromMap(rp))
	}
	if ts, ok := data["last_decay_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			g.lastDecayAt = parsed
		}
	}
	return g
}

// mapSlice accepts either []map[string]any (direct ToMap output) or []any
// of map[string]any elements (a JSON-decoded payload).
func mapSlice(v any) []map[string]any {
	switch raw := v.(type) {
	case []map[string]any:
		return raw
	case []any:
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func stringSlice(v any) []string {
	switch raw := v.(type) {
	case []string:
		return append([]string(nil), raw...)
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func nodeFromMap(m map[string]any) *Node {
	n := &Node{
		ID:         stringOr(m["id"], ""),
		Type:       NodeType(stringOr(m["type"], string(TypeFact))),
		Content:    stringOr(m["content"], ""),
		Relevance:  floatOr(m["relevance"], 0.5),
		Confidence: floatOr(m["confidence"], 0.5),
		Pinned:     boolOr(m["pinned"], false),
	}
	n.AccessCount = int(floatOr(m["access_count"], 0))
	n.CachedTokens = int(floatOr(m["cached_tokens"], 0))
	if md, ok := m["metadata"].(map[string]any); ok {
		n.Metadata = md
	} else {
		n.Metadata = map[string]any{}
	}
	if ts, ok := m["last_accessed"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			n.LastAccessed = parsed
		}
	}
	if n.LastAccessed.IsZero() {
		n.LastAccessed = time.Now().UTC()
	}
	return n
}

func edgeFromMap(m map[string]any) *Edge {
	return &Edge{
		Source:       stringOr(m["source"], ""),
		Target:       stringOr(m["target"], ""),
		Relationship: stringOr(m["relationship"], ""),
		Strength:     floatOr(m["strength"], 1.0),
	}
}

func pendingItemFromMap(m map[string]any) PendingItem {
	p := PendingItem{
		ID:      stringOr(m["id"], ""),
		Content: stringOr(m["content"], ""),
	}
	if md, ok := m["metadata"].(map[string]any); ok {
		p.Metadata = md
	} else {
		p.Metadata = map[string]any{}
	}
	if ts, ok := m["created_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			p.CreatedAt = parsed
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return p
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func floatOr(v any, def float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	default:
		return def
	}
}

func boolOr(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
