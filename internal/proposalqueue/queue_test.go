package proposalqueue

import (
	"strings"
	"testing"
)

type fakeSink struct {
	created []fakeNode
}

type fakeNode struct {
	nodeType  string
	content   string
	relevance float64
	metadata  map[string]any
}

func (f *fakeSink) AddNode(nodeType, content string, relevance float64, metadata map[string]any) (string, error) {
	f.created = append(f.created, fakeNode{nodeType: nodeType, content: content, relevance: relevance, metadata: metadata})
	return "node_fake", nil
}

func TestCreateDedupsExactContentAndType(t *testing.T) {
	q := New("agent-1")
	id1, err := q.Create(CreateSpec{Type: TypeFact, Content: "water boils at 100C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := q.Create(CreateSpec{Type: TypeFact, Content: "water boils at 100C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected duplicate create to return same id")
	}

	id3, err := q.Create(CreateSpec{Type: TypeInsight, Content: "water boils at 100C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("expected different type not to dedup against fact")
	}
}

func TestCreateRejectsUnknownTypeOrEmptyContent(t *testing.T) {
	q := New("agent-1")
	if _, err := q.Create(CreateSpec{Type: "bogus", Content: "x"}); err == nil {
		t.Fatalf("expected invalid type error")
	}
	if _, err := q.Create(CreateSpec{Type: TypeFact, Content: ""}); err == nil {
		t.Fatalf("expected empty content error")
	}
}

func TestAcceptRoutesFactDirectlyWithoutTruncation(t *testing.T) {
	q := New("agent-1")
	sink := &fakeSink{}
	id, _ := q.Create(CreateSpec{Type: TypeFact, Content: "the sky is blue", Confidence: 0.5})

	res, err := q.Accept(id, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DomainStore != "" {
		t.Fatalf("expected fact to not be domain routed")
	}
	if sink.created[0].nodeType != "fact" {
		t.Fatalf("expected fact proposal to route to fact node, got %q", sink.created[0].nodeType)
	}
}

func TestAcceptTruncatesIdentityAndRoutesToSelfKnowledge(t *testing.T) {
	q := New("agent-1")
	sink := &fakeSink{}
	longContent := strings.Repeat("x", 300)
	id, _ := q.Create(CreateSpec{Type: TypeIdentity, Content: longContent, Confidence: 0.5})

	res, err := q.Accept(id, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DomainStore != "self_knowledge" {
		t.Fatalf("expected identity proposal routed to self_knowledge, got %q", res.DomainStore)
	}
	stored := sink.created[0].content
	if len(stored) != 203 || !strings.HasSuffix(stored, "...") {
		t.Fatalf("expected content truncated to 203 chars ending '...', got len=%d %q", len(stored), stored)
	}
	if sink.created[0].metadata["reference_only"] != true {
		t.Fatalf("expected reference_only metadata to be set")
	}
}

func TestAcceptBoostsRelevanceFromConfidence(t *testing.T) {
	q := New("agent-1")
	sink := &fakeSink{}
	id, _ := q.Create(CreateSpec{Type: TypeFact, Content: "confidence test", Confidence: 0.9})

	if _, err := q.Accept(id, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// confidence 0.9 + 0.2 boost is capped at 1.0.
	if got := sink.created[0].relevance; got != 1.0 {
		t.Fatalf("expected relevance 1.0, got %v", got)
	}
	p, err := q.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusAccepted {
		t.Fatalf("expected status accepted, got %v", p.Status)
	}
}

func TestInvalidStatusTransitionFails(t *testing.T) {
	q := New("agent-1")
	sink := &fakeSink{}
	id, _ := q.Create(CreateSpec{Type: TypeFact, Content: "once only"})
	if _, err := q.Accept(id, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := q.Accept(id, sink); err == nil {
		t.Fatalf("expected accepting an already-accepted proposal to fail")
	}
	if err := q.Reject(id); err == nil {
		t.Fatalf("expected rejecting an already-accepted proposal to fail")
	}
}

func TestDeferThenUndefer(t *testing.T) {
	q := New("agent-1")
	id, _ := q.Create(CreateSpec{Type: TypeFact, Content: "defer me"})
	if err := q.Defer(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.CountPending() != 0 {
		t.Fatalf("expected deferred proposal to not count as pending")
	}
	if err := q.Undefer(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.CountPending() != 1 {
		t.Fatalf("expected undeferred proposal to count as pending again")
	}
}

func TestDeferredProposalMustUndeferBeforeDecision(t *testing.T) {
	q := New("agent-1")
	sink := &fakeSink{}
	id, _ := q.Create(CreateSpec{Type: TypeFact, Content: "deferred decision"})
	if err := q.Defer(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := q.Accept(id, sink); err == nil {
		t.Fatalf("expected accepting a deferred proposal to fail without undefer")
	}
	if err := q.Reject(id); err == nil {
		t.Fatalf("expected rejecting a deferred proposal to fail without undefer")
	}
	if err := q.Undefer(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := q.Accept(id, sink); err != nil {
		t.Fatalf("expected accept after undefer to succeed: %v", err)
	}
}

type failingSink struct{}

func (failingSink) AddNode(string, string, float64, map[string]any) (string, error) {
	return "", &EmptyContentError{}
}

func TestAcceptRollsBackToPendingWhenSinkFails(t *testing.T) {
	q := New("agent-1")
	id, _ := q.Create(CreateSpec{Type: TypeFact, Content: "sink failure"})
	if _, err := q.Accept(id, failingSink{}); err == nil {
		t.Fatalf("expected sink failure to surface")
	}
	p, err := q.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPending {
		t.Fatalf("expected proposal rolled back to pending after sink failure, got %v", p.Status)
	}
}

func TestListPendingSortsByConfidenceWhenRequested(t *testing.T) {
	q := New("agent-1")
	_, _ = q.Create(CreateSpec{Type: TypeFact, Content: "low", Confidence: 0.1})
	_, _ = q.Create(CreateSpec{Type: TypeFact, Content: "high", Confidence: 0.9})

	items := q.ListPending(ListOptions{ByConfidence: true})
	if len(items) != 2 || items[0].Content != "high" {
		t.Fatalf("expected highest-confidence proposal first, got %+v", items)
	}
}

func TestAcceptAllBestEffort(t *testing.T) {
	q := New("agent-1")
	sink := &fakeSink{}
	_, _ = q.Create(CreateSpec{Type: TypeFact, Content: "a"})
	_, _ = q.Create(CreateSpec{Type: TypeInsight, Content: "b"})

	results := q.AcceptAll(sink)
	if len(results) != 2 {
		t.Fatalf("expected both proposals accepted, got %d", len(results))
	}
	if q.CountPending() != 0 {
		t.Fatalf("expected no proposals left pending")
	}
}
