package agentcore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cogmem/internal/eventbus"
	"cogmem/internal/knowledgegraph"
	"cogmem/internal/reflection"
	"cogmem/internal/workingmemory"
)

func timeFromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// graphAdapter narrows *knowledgegraph.Graph down to reflection.KnowledgeGraph
// and proposalqueue.NodeSink, the two shapes outside packages need, so
// neither of them has to import internal/knowledgegraph directly.
type graphAdapter struct{ g *knowledgegraph.Graph }

func (a graphAdapter) FindByName(name string) (reflection.GraphNode, bool) {
	n, ok := a.g.FindByName(name)
	if !ok {
		return reflection.GraphNode{}, false
	}
	return reflection.GraphNode{ID: n.ID, Content: n.Content}, true
}

func (a graphAdapter) AddNode(nodeType, content string, relevance float64, metadata map[string]any) (string, error) {
	return a.g.AddNode(knowledgegraph.NodeSpec{
		Type:      knowledgegraph.NodeType(nodeType),
		Content:   content,
		Relevance: relevance,
		Metadata:  metadata,
	})
}

func (a graphAdapter) AddEdge(source, target, relationship string, strength float64) error {
	return a.g.AddEdge(source, target, relationship, strength)
}

func (a graphAdapter) ToPromptText() string {
	return a.g.ToPromptText(knowledgegraph.PromptOptions{})
}

// wmAdapter narrows *workingmemory.Memory down to reflection.WorkingMemory,
// adding the SelfKnowledgeSummary rendering reflection's deep-context build
// needs but workingmemory itself has no reason to own (it is purely a
// reflection-prompt concern, grounded on the teacher's
// internal/agent/prompts/system.go structured-section style).
type wmAdapter struct{ m *workingmemory.Memory }

func (a wmAdapter) Goals() []reflection.WMGoal {
	goals := a.m.Goals()
	out := make([]reflection.WMGoal, 0, len(goals))
	for _, g := range goals {
		var deadline *int64
		if g.Deadline != nil {
			ms := g.Deadline.UnixMilli()
			deadline = &ms
		}
		out = append(out, reflection.WMGoal{
			ID:          g.ID,
			Description: g.Description,
			Type:        g.Type,
			Priority:    g.Priority,
			Progress:    g.Progress,
			Status:      string(g.Status),
			Note:        g.Note,
			Blockers:    g.Blockers,
			Deadline:    deadline,
		})
	}
	return out
}

func (a wmAdapter) AddGoal(g reflection.WMGoal) string {
	goal := workingmemory.Goal{
		ID:          g.ID,
		Description: g.Description,
		Type:        g.Type,
		Priority:    g.Priority,
		Progress:    g.Progress,
		Status:      workingmemory.GoalStatus(g.Status),
		Note:        g.Note,
		Blockers:    g.Blockers,
	}
	if g.Deadline != nil {
		t := timeFromUnixMilli(*g.Deadline)
		goal.Deadline = &t
	}
	return a.m.AddGoal(goal)
}

func (a wmAdapter) ApplyGoalUpdate(id string, progress int, status, note string, blockers []string) {
	a.m.ApplyGoalUpdate(id, progress, status, note, blockers)
}
func (a wmAdapter) AddThoughtText(content string) { a.m.AddThoughtText(content) }

func (a wmAdapter) Thoughts() []reflection.WMThought {
	thoughts := a.m.Thoughts()
	out := make([]reflection.WMThought, 0, len(thoughts))
	for _, t := range thoughts {
		out = append(out, reflection.WMThought{Content: t.Content, Timestamp: t.Timestamp.UnixMilli()})
	}
	return out
}

func (a wmAdapter) ToPromptText() string {
	return a.m.ToPromptText(workingmemory.PromptOptions{IncludeIdentity: true})
}

// SelfKnowledgeSummary renders the subset of working memory that describes
// the agent to itself: engagement level, goal/concern/curiosity counts, and
// the curiosity and concern lists. Name, relationship and trait-bearing
// knowledge are not included here.
func (a wmAdapter) SelfKnowledgeSummary() string {
	stats := a.m.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "engagement: %.2f, active goals: %d, concerns: %d, curiosities: %d",
		stats.EngagementLevel, stats.ActiveGoalCount, stats.ConcernCount, stats.CuriosityCount)
	if curiosities := a.m.Curiosities(); len(curiosities) > 0 {
		fmt.Fprintf(&b, "\ncurious about: %s", strings.Join(curiosities, "; "))
	}
	if concerns := a.m.Concerns(); len(concerns) > 0 {
		fmt.Fprintf(&b, "\nconcerned about: %s", strings.Join(concerns, "; "))
	}
	return b.String()
}

// signalSourceAdapter narrows eventbus.Bus down to
// workingmemory.SignalSource, converting eventbus.Signal to
// workingmemory.Signal (identical shape, different package).
type signalSourceAdapter struct{ bus eventbus.Bus }

func (a signalSourceAdapter) ReplaySignals(agentID string) ([]workingmemory.Signal, error) {
	sigs, ok := a.bus.Replay(context.Background(), agentID)
	if !ok {
		return nil, nil
	}
	out := make([]workingmemory.Signal, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, workingmemory.Signal{
			Type:          s.Type,
			Data:          s.Data,
			Timestamp:     s.Timestamp,
			CorrelationID: s.CorrelationID,
			CauseID:       s.CauseID,
		})
	}
	return out, nil
}
