package knowledgegraph

import (
	"time"

	"github.com/google/uuid"
)

// AddPendingFact queues content as a fact awaiting approval, returning its
// pending id.
func (g *Graph) AddPendingFact(content string, metadata map[string]any) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	item := PendingItem{ID: "pend_" + uuid.NewString(), Content: content, Metadata: copyMetadata(metadata), CreatedAt: time.Now().UTC()}
	g.pendingFacts = append(g.pendingFacts, item)
	return item.ID
}

// AddPendingLearning queues content as a learning awaiting approval.
func (g *Graph) AddPendingLearning(content string, metadata map[string]any) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	item := PendingItem{ID: "pend_" + uuid.NewString(), Content: content, Metadata: copyMetadata(metadata), CreatedAt: time.Now().UTC()}
	g.pendingLearnings = append(g.pendingLearnings, item)
	return item.ID
}

// GetPendingFacts returns a copy of the pending fact queue.
func (g *Graph) GetPendingFacts() []PendingItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]PendingItem(nil), g.pendingFacts...)
}

// GetPendingLearnings returns a copy of the pending learning queue.
func (g *Graph) GetPendingLearnings() []PendingItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]PendingItem(nil), g.pendingLearnings...)
}

// ApprovePendingFact promotes a queued fact into the graph as a fact node.
func (g *Graph) ApprovePendingFact(id string) (string, error) {
	return g.approvePending(&g.pendingFacts, id, TypeFact)
}

// ApprovePendingLearning promotes a queued learning into the graph as an
// insight node.
func (g *Graph) ApprovePendingLearning(id string) (string, error) {
	return g.approvePending(&g.pendingLearnings, id, TypeInsight)
}

func (g *Graph) approvePending(queue *[]PendingItem, id string, t NodeType) (string, error) {
	g.mu.Lock()
	idx := -1
	var item PendingItem
	for i, it := range *queue {
		if it.ID == id {
			idx = i
			item = it
			break
		}
	}
	if idx == -1 {
		g.mu.Unlock()
		return "", errNotFound("pending item")
	}
	*queue = append((*queue)[:idx], (*queue)[idx+1:]...)
	g.mu.Unlock()

	return g.AddNode(NodeSpec{Type: t, Content: item.Content, Metadata: item.Metadata})
}

// RejectPendingFact discards a queued fact without creating a node.
func (g *Graph) RejectPendingFact(id string) error {
	return g.rejectPending(&g.pendingFacts, id)
}

// RejectPendingLearning discards a queued learning without creating a node.
func (g *Graph) RejectPendingLearning(id string) error {
	return g.rejectPending(&g.pendingLearnings, id)
}

func (g *Graph) rejectPending(queue *[]PendingItem, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, it := range *queue {
		if it.ID == id {
			*queue = append((*queue)[:i], (*queue)[i+1:]...)
			return nil
		}
	}
	return errNotFound("pending item")
}

// ApproveAllPendingFacts promotes every queued fact, returning the new node
// ids in queue order. Best-effort: a single failure does not stop the rest.
func (g *Graph) ApproveAllPendingFacts() []string {
	items := g.GetPendingFacts()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id, err := g.ApprovePendingFact(it.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// ApproveAllPendingLearnings promotes every queued learning.
func (g *Graph) ApproveAllPendingLearnings() []string {
	items := g.GetPendingLearnings()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id, err := g.ApprovePendingLearning(it.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
