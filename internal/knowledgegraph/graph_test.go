package knowledgegraph

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAddNodeDedupBoostsRelevance(t *testing.T) {
	g := New("agent-1", Config{})
	id1, err := g.AddNode(NodeSpec{Type: TypeFact, Content: "the sky is blue", Relevance: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := g.AddNode(NodeSpec{Type: TypeFact, Content: "  The Sky Is Blue  ", Relevance: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected dedup to return the same id, got %q and %q", id1, id2)
	}
	n, _ := g.GetNode(id1)
	if n.Relevance <= 0.5 {
		t.Fatalf("expected dedup to boost relevance above 0.5, got %v", n.Relevance)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected a single stored node, got %d", g.NodeCount())
	}
}

func TestAddNodeMissingFields(t *testing.T) {
	g := New("agent-1", Config{})
	if _, err := g.AddNode(NodeSpec{Content: "x"}); err == nil {
		t.Fatalf("expected missing_type error")
	}
	if _, err := g.AddNode(NodeSpec{Type: TypeFact}); err == nil {
		t.Fatalf("expected missing_content error")
	}
	if _, err := g.AddNode(NodeSpec{Type: "bogus", Content: "x"}); err == nil {
		t.Fatalf("expected invalid_type error")
	}
}

func TestAddNodeQuotaExceeded(t *testing.T) {
	g := New("agent-1", Config{MaxNodesPerType: 2})
	for i := 0; i < 2; i++ {
		if _, err := g.AddNode(NodeSpec{Type: TypeFact, Content: randomContent(i), SkipDedup: true}); err != nil {
			t.Fatalf("unexpected error on node %d: %v", i, err)
		}
	}
	if _, err := g.AddNode(NodeSpec{Type: TypeFact, Content: "overflow", SkipDedup: true}); err == nil {
		t.Fatalf("expected quota_exceeded error")
	}
}

func TestAddEdgeMergeCapsAtTen(t *testing.T) {
	g := New("agent-1", Config{})
	aID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "edge endpoint a", SkipDedup: true})
	bID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "edge endpoint b", SkipDedup: true})
	for i := 0; i < 25; i++ {
		if err := g.AddEdge(aID, bID, "relates_to", 1.0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	edges := g.EdgesFrom(aID)
	if len(edges) != 1 {
		t.Fatalf("expected edges to merge into one, got %d", len(edges))
	}
	if edges[0].Strength != maxEdgeStrength {
		t.Fatalf("expected strength capped at %v, got %v", maxEdgeStrength, edges[0].Strength)
	}
}

func TestAddEdgeMergeAlwaysAddsFixedIncrement(t *testing.T) {
	g := New("agent-1", Config{})
	aID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "edge endpoint a", SkipDedup: true})
	bID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "edge endpoint b", SkipDedup: true})

	if err := g.AddEdge(aID, bID, "relates_to", 2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddEdge(aID, bID, "relates_to", 3.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edges := g.EdgesFrom(aID)
	if len(edges) != 1 {
		t.Fatalf("expected edges to merge into one, got %d", len(edges))
	}
	if edges[0].Strength != 2.5 {
		t.Fatalf("expected merge to add the fixed 0.5 increment regardless of the caller's strength argument, got %v", edges[0].Strength)
	}
}

func TestDecayFloorsAtMinRelevance(t *testing.T) {
	g := New("agent-1", Config{DecayRate: 1.0})
	id, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "old fact", Relevance: 1.0, SkipDedup: true})
	n, _ := g.GetNode(id)
	past := n.LastAccessed.Add(-100 * 24 * time.Hour)
	g.mu.Lock()
	g.nodes[id].LastAccessed = past
	g.mu.Unlock()

	g.ApplyDecay(n.LastAccessed)
	n, _ = g.GetNode(id)
	if n.Relevance != minRelevance {
		t.Fatalf("expected relevance to floor at %v, got %v", minRelevance, n.Relevance)
	}
}

func TestDecaySparesPinnedNodes(t *testing.T) {
	g := New("agent-1", Config{DecayRate: 1.0})
	id, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "pinned fact", Relevance: 1.0, Pinned: true, SkipDedup: true})
	g.mu.Lock()
	g.nodes[id].LastAccessed = time.Now().Add(-100 * 24 * time.Hour)
	g.mu.Unlock()

	g.ApplyDecay(time.Now())
	n, _ := g.GetNode(id)
	if n.Relevance != 1.0 {
		t.Fatalf("expected pinned node to be immune to decay, got %v", n.Relevance)
	}
}

func TestPruneAndArchiveRemovesLowRelevance(t *testing.T) {
	g := New("agent-1", Config{PruneThreshold: 0.2})
	lowID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "fading", Relevance: 0.01, SkipDedup: true})
	highID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "sticking around", Relevance: 0.9, SkipDedup: true})

	removed := g.PruneAndArchive(0)
	if len(removed) != 1 || removed[0].ID != lowID {
		t.Fatalf("expected only the low-relevance node to be pruned, got %+v", removed)
	}
	if _, err := g.GetNode(lowID); err == nil {
		t.Fatalf("expected pruned node to be gone")
	}
	if _, err := g.GetNode(highID); err != nil {
		t.Fatalf("expected high-relevance node to remain: %v", err)
	}
}

func TestCascadeRecallBoostsNeighborsByDepth(t *testing.T) {
	g := New("agent-1", Config{})
	aID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "root topic", Relevance: 0.5, SkipDedup: true})
	bID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "depth one neighbor", Relevance: 0.3, SkipDedup: true})
	cID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "depth two neighbor", Relevance: 0.2, SkipDedup: true})
	dID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "far node", Relevance: 0.2, SkipDedup: true})

	if err := g.AddEdge(aID, bID, "relates_to", 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddEdge(bID, cID, "relates_to", 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddEdge(cID, dID, "relates_to", 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	beforeA, beforeB, beforeD := 0.5, 0.3, 0.2
	if _, err := g.CascadeRecall(aID, 0.2, 2, 0.5, 0.05); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aNode, _ := g.GetNode(aID)
	bNode, _ := g.GetNode(bID)
	cNode, _ := g.GetNode(cID)
	dNode, _ := g.GetNode(dID)

	if aNode.Relevance <= beforeA {
		t.Fatalf("expected start node to be boosted, got %v", aNode.Relevance)
	}
	if bNode.Relevance <= beforeB {
		t.Fatalf("expected depth-1 neighbor to be boosted, got %v", bNode.Relevance)
	}
	if want := beforeB + 0.2; bNode.Relevance < want-1e-9 {
		t.Fatalf("expected depth-1 neighbor boosted by the full boost, got %v want >= %v", bNode.Relevance, want)
	}
	wantC := 0.2 + 0.2*0.5 // base relevance 0.2 + boost*decayFactor
	if diff := cNode.Relevance - wantC; diff < -1e-9 || diff > 1e-9 {
		t.Fatalf("expected depth-2 neighbor boosted by boost*decayFactor, got %v want %v", cNode.Relevance, wantC)
	}
	if dNode.Relevance < beforeD-0.06 || dNode.Relevance > beforeD+0.06 {
		t.Fatalf("expected depth-3 node past max_depth=2 to stay within +-0.06 of baseline, got %v", dNode.Relevance)
	}
}

func TestCascadeRecallUnknownStartReturnsNotFound(t *testing.T) {
	g := New("agent-1", Config{})
	if _, err := g.CascadeRecall("node_missing", 0.2, 2, 0.5, 0.05); err == nil {
		t.Fatalf("expected not_found error for unknown start id")
	}
}

func TestSelectByTokenBudgetPrefixPreservingWhenUnconstrained(t *testing.T) {
	g := New("agent-1", Config{})
	var ids []string
	for i := 0; i < 5; i++ {
		id, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: randomContent(i), Relevance: float64(i) / 10, SkipDedup: true})
		ids = append(ids, id)
	}

	full := g.sortedNodeIDsByRelevanceDesc()
	selected := g.SelectByTokenBudget(1_000_000, nil)

	if len(selected) != len(full) {
		t.Fatalf("expected all nodes selected when unconstrained, got %d of %d", len(selected), len(full))
	}
	for i := range full {
		if full[i] != selected[i] {
			t.Fatalf("expected prefix-preserving order at index %d: want %s got %s", i, full[i], selected[i])
		}
	}
}

func TestSelectByTokenBudgetExcludesTypeAtZeroQuota(t *testing.T) {
	g := New("agent-1", Config{})
	factID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "fact content", Relevance: 0.9, SkipDedup: true})
	skillID, _ := g.AddNode(NodeSpec{Type: TypeSkill, Content: "skill content", Relevance: 0.9, SkipDedup: true})

	selected := g.SelectByTokenBudget(1_000_000, map[NodeType]float64{TypeSkill: 0})

	found := map[string]bool{}
	for _, id := range selected {
		found[id] = true
	}
	if !found[factID] {
		t.Fatalf("expected fact node to be selected")
	}
	if found[skillID] {
		t.Fatalf("expected skill node to be excluded at zero quota")
	}
}

func TestActiveSetEvictsLowestRelevanceWhenOverCapacity(t *testing.T) {
	g := New("agent-1", Config{MaxActive: 2})
	lowID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "low", Relevance: 0.1, SkipDedup: true})
	_, _ = g.AddNode(NodeSpec{Type: TypeFact, Content: "mid", Relevance: 0.5, SkipDedup: true})
	highID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "high", Relevance: 0.9, SkipDedup: true})

	active := g.ActiveSet()
	if len(active) != 2 {
		t.Fatalf("expected active set capped at 2, got %d", len(active))
	}
	for _, id := range active {
		if id == lowID {
			t.Fatalf("expected lowest-relevance node to be evicted")
		}
	}
	found := false
	for _, id := range active {
		if id == highID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected highest-relevance node to remain active")
	}
}

func TestPendingFactApprovalCreatesNode(t *testing.T) {
	g := New("agent-1", Config{})
	pendID := g.AddPendingFact("newly learned fact", map[string]any{"source": "test"})
	if len(g.GetPendingFacts()) != 1 {
		t.Fatalf("expected one pending fact")
	}

	nodeID, err := g.ApprovePendingFact(pendID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.GetPendingFacts()) != 0 {
		t.Fatalf("expected pending queue to be drained after approval")
	}
	n, err := g.GetNode(nodeID)
	if err != nil {
		t.Fatalf("expected approved fact to exist as a node: %v", err)
	}
	if n.Type != TypeFact {
		t.Fatalf("expected approved pending fact to become a fact node, got %v", n.Type)
	}
}

func TestToMapFromMapRoundTrip(t *testing.T) {
	g := New("agent-1", Config{})
	id, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "round trip me", Relevance: 0.7, SkipDedup: true})
	_ = g.AddEdge(id, id, "self_relates", 2.0)

	data := g.ToMap()
	restored := FromMap(data, Config{})

	if restored.NodeCount() != 1 {
		t.Fatalf("expected restored graph to have 1 node, got %d", restored.NodeCount())
	}
	n, err := restored.GetNode(id)
	if err != nil {
		t.Fatalf("expected restored node to be found: %v", err)
	}
	if n.Content != "round trip me" {
		t.Fatalf("expected content to survive round trip, got %q", n.Content)
	}
}

func TestPruneAndArchiveIsStrictlyLessThanThreshold(t *testing.T) {
	g := New("agent-1", Config{})
	atThresholdID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "right at threshold", Relevance: 0.2, SkipDedup: true})
	belowID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "below threshold", Relevance: 0.19, SkipDedup: true})

	removed := g.PruneAndArchive(0.2)
	if len(removed) != 1 || removed[0].ID != belowID {
		t.Fatalf("expected only the strictly-below-threshold node to be pruned, got %+v", removed)
	}
	if _, err := g.GetNode(atThresholdID); err != nil {
		t.Fatalf("expected node with relevance == threshold to survive: %v", err)
	}
}

func TestDecayAndArchiveNoopsUnderCapacityWithoutForce(t *testing.T) {
	g := New("agent-1", Config{DecayRate: 1.0, MaxActive: 50, MaxNodesPerType: 500})
	id, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "fading", Relevance: 0.05, SkipDedup: true})
	g.mu.Lock()
	g.nodes[id].LastAccessed = time.Now().Add(-100 * 24 * time.Hour)
	g.mu.Unlock()

	removed := g.DecayAndArchive(time.Now(), false)
	if len(removed) != 0 {
		t.Fatalf("expected no-op under capacity without force, got %d removed", len(removed))
	}
	n, err := g.GetNode(id)
	if err != nil || n.Relevance != 0.05 {
		t.Fatalf("expected node untouched by a skipped decay sweep, got %+v err=%v", n, err)
	}

	removed = g.DecayAndArchive(time.Now(), true)
	if len(removed) != 1 {
		t.Fatalf("expected force:true to run the sweep and prune the fading node, got %d removed", len(removed))
	}
}

func TestToPromptTextIncludeRelationsRendersContentNotIDs(t *testing.T) {
	g := New("agent-1", Config{})
	aID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "alpha fact", Relevance: 0.9, SkipDedup: true})
	bID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "beta fact", Relevance: 0.9, SkipDedup: true})
	if err := g.AddEdge(aID, bID, "relates_to", 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := g.ToPromptText(PromptOptions{Budget: 1000, IncludeRelations: true})
	if !strings.Contains(text, "→ relates_to: beta fact") {
		t.Fatalf("expected outgoing relation rendered with target content, got:\n%s", text)
	}
	if !strings.Contains(text, "← relates_to: alpha fact") {
		t.Fatalf("expected incoming relation rendered with source content, got:\n%s", text)
	}
	if strings.Contains(text, aID) || strings.Contains(text, bID) {
		t.Fatalf("expected relation lines to render content, not raw node ids, got:\n%s", text)
	}
}

func TestRecallFiltersByTypesAndMinRelevance(t *testing.T) {
	g := New("agent-1", Config{})
	factID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "shared keyword fact", Relevance: 0.9, SkipDedup: true})
	_, _ = g.AddNode(NodeSpec{Type: TypeSkill, Content: "shared keyword skill", Relevance: 0.9, SkipDedup: true})
	_, _ = g.AddNode(NodeSpec{Type: TypeFact, Content: "shared keyword faint", Relevance: 0.1, SkipDedup: true})

	out := g.Recall("shared keyword", RecallOptions{Types: []NodeType{TypeFact}, MinRelevance: 0.5})
	if len(out) != 1 || out[0].ID != factID {
		t.Fatalf("expected only the strong fact node, got %+v", out)
	}
}

func TestRelatedBFSExcludesStartAndFiltersRelationship(t *testing.T) {
	g := New("agent-1", Config{})
	aID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "hub", Relevance: 0.5, SkipDedup: true})
	bID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "spoke one", Relevance: 0.9, SkipDedup: true})
	cID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "spoke two", Relevance: 0.3, SkipDedup: true})
	dID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "second hop", Relevance: 0.7, SkipDedup: true})

	_ = g.AddEdge(aID, bID, "supports", 1.0)
	_ = g.AddEdge(aID, cID, "contradicts", 1.0)
	_ = g.AddEdge(bID, dID, "supports", 1.0)

	out := g.Related(aID, RelatedOptions{MaxDepth: 2, Relationship: "supports"})
	if len(out) != 2 {
		t.Fatalf("expected 2 supports-reachable nodes, got %d", len(out))
	}
	if out[0].ID != bID || out[1].ID != dID {
		t.Fatalf("expected relevance-sorted [spoke one, second hop], got %+v", out)
	}
	for _, n := range out {
		if n.ID == aID || n.ID == cID {
			t.Fatalf("expected start node and off-relationship node excluded")
		}
	}
}

func TestApplyDecayProtectingShieldsListedIDs(t *testing.T) {
	g := New("agent-1", Config{DecayRate: 1.0})
	protectedID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "protected", Relevance: 1.0, SkipDedup: true})
	decayedID, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "unprotected", Relevance: 1.0, SkipDedup: true})
	past := time.Now().Add(-100 * 24 * time.Hour)
	g.mu.Lock()
	g.nodes[protectedID].LastAccessed = past
	g.nodes[decayedID].LastAccessed = past
	g.mu.Unlock()

	g.ApplyDecayProtecting(time.Now(), []string{protectedID})

	p, _ := g.GetNode(protectedID)
	d, _ := g.GetNode(decayedID)
	if p.Relevance != 1.0 {
		t.Fatalf("expected protected node untouched, got %v", p.Relevance)
	}
	if d.Relevance != minRelevance {
		t.Fatalf("expected unprotected node decayed to floor, got %v", d.Relevance)
	}
}

func TestFromMapAcceptsJSONDecodedPayload(t *testing.T) {
	g := New("agent-1", Config{})
	id, _ := g.AddNode(NodeSpec{Type: TypeFact, Content: "json survivor", Relevance: 0.7, SkipDedup: true})

	raw, err := json.Marshal(g.ToMap())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := FromMap(decoded, Config{})
	n, err := restored.GetNode(id)
	if err != nil {
		t.Fatalf("expected node restored from JSON-decoded payload: %v", err)
	}
	if n.Content != "json survivor" || n.Relevance != 0.7 {
		t.Fatalf("expected fields to survive the JSON round trip, got %+v", n)
	}
	if n.CachedTokens == 0 {
		t.Fatalf("expected cached_tokens to survive the JSON round trip")
	}
}

func randomContent(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	return "content-" + string(letters[i%len(letters)]) + string(rune('0'+i))
}
