package reflection

import (
	"context"
	"strconv"
	"strings"
)

const maxSelfInsightSuggestions = 10

func priorityToInt(priority string) int {
	switch strings.ToLower(priority) {
	case "critical":
		return 90
	case "high":
		return 70
	case "medium":
		return 50
	case "low":
		return 30
	default:
		return 50
	}
}

// AppliedCounts tallies how many items of each kind were actually applied,
// for Result's reporting.
type AppliedCounts struct {
	GoalsUpdated      int
	GoalsCreated      int
	InsightsWritten   int
	LearningsApplied  int
	NodesCreated      int
	EdgesCreated      int
	RelationshipsUpserted int
	SuggestionsAdded  int
}

const insightImportanceGate = 0.3
const learningConfidenceGate = 0.4

func (o *Orchestrator) applyResponse(ctx context.Context, resp LLMResponse) AppliedCounts {
	var counts AppliedCounts

	for _, gu := range resp.GoalUpdates {
		if gu.ID == "" {
			continue
		}
		o.WorkingMemory.ApplyGoalUpdate(gu.ID, gu.Progress, gu.Status, gu.Note, gu.Blockers)
		counts.GoalsUpdated++
	}

	for _, ng := range resp.NewGoals {
		if ng.Description == "" {
			continue
		}
		goalType := ng.Type
		if goalType == "" {
			goalType = "achieve"
		}
		o.WorkingMemory.AddGoal(WMGoal{
			Description: ng.Description,
			Priority:    strconv.Itoa(priorityToInt(ng.Priority)),
			Type:        goalType,
			Status:      "active",
		})
		counts.GoalsCreated++
	}

	createdNodes := make(map[string]string) // name -> node id
	for _, kn := range resp.KnowledgeNodes {
		if kn.Name == "" {
			continue
		}
		if _, exists := o.Graph.FindByName(kn.Name); exists {
			continue
		}
		content := kn.Content
		if content == "" {
			content = kn.Name
		}
		id, err := o.Graph.AddNode(kn.Type, content, 0.5, map[string]any{"name": kn.Name})
		if err != nil {
			continue
		}
		createdNodes[kn.Name] = id
		counts.NodesCreated++
	}

	for _, ke := range resp.KnowledgeEdges {
		sourceID := resolveNodeID(o.Graph, createdNodes, ke.SourceName)
		targetID := resolveNodeID(o.Graph, createdNodes, ke.TargetName)
		if sourceID == "" || targetID == "" {
			continue
		}
		if err := o.Graph.AddEdge(sourceID, targetID, ke.Relationship, ke.Strength); err == nil {
			counts.EdgesCreated++
		}
	}

	for _, ins := range resp.Insights {
		if ins.Content == "" || ins.Importance < insightImportanceGate {
			continue
		}
		o.WorkingMemory.AddThoughtText("[Insight] " + ins.Content)
		counts.InsightsWritten++
	}

	for _, l := range resp.Learnings {
		if l.Content == "" || l.Confidence < learningConfidenceGate {
			continue
		}
		switch l.Category {
		case "technical":
			if _, err := o.Graph.AddNode("skill", l.Content, l.Confidence, map[string]any{"learning_type": classifyLearning(l.Content)}); err == nil {
				counts.LearningsApplied++
			}
		case "self":
			o.WorkingMemory.AddThoughtText("[Self Growth] " + l.Content)
			counts.LearningsApplied++
		default:
			o.WorkingMemory.AddThoughtText(l.Content)
			counts.LearningsApplied++
		}
	}

	if o.Relationships != nil {
		for _, r := range resp.Relationships {
			if r.Name == "" {
				continue
			}
			if err := o.Relationships.Upsert(ctx, r.Name, r.Context); err == nil {
				counts.RelationshipsUpserted++
			}
		}
	}

	if len(resp.SelfInsightSuggestions) > 0 {
		existing := make(map[string]bool)
		for _, t := range o.WorkingMemory.Thoughts() {
			if strings.HasPrefix(t.Content, "[Insight Suggestion] ") {
				existing[t.Content] = true
			}
		}
		added := 0
		for _, s := range resp.SelfInsightSuggestions {
			if added >= maxSelfInsightSuggestions {
				break
			}
			if s == "" {
				continue
			}
			line := "[Insight Suggestion] " + s
			if existing[line] {
				continue
			}
			o.WorkingMemory.AddThoughtText(line)
			existing[line] = true
			added++
			counts.SuggestionsAdded++
		}
	}

	return counts
}

// classifyLearning distinguishes procedural technical learnings ("how to
// do X") from factual ones ("X is Y"), refining the skill node's metadata
// the same way a memory store separating procedural from factual entries
// would tag them.
func classifyLearning(content string) string {
	lower := strings.ToLower(content)
	proceduralMarkers := []string{"how to", "steps to", "when doing", "to do this", "procedure", "workflow", "first,", "then,"}
	for _, marker := range proceduralMarkers {
		if strings.Contains(lower, marker) {
			return "procedural"
		}
	}
	return "factual"
}

func resolveNodeID(graph KnowledgeGraph, created map[string]string, name string) string {
	if id, ok := created[name]; ok {
		return id
	}
	if n, ok := graph.FindByName(name); ok {
		return n.ID
	}
	return ""
}
