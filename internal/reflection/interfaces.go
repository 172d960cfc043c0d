package reflection

import "context"

// KnowledgeGraph is the narrow surface deep_reflect needs from
// internal/knowledgegraph.Graph.
type KnowledgeGraph interface {
	FindByName(name string) (GraphNode, bool)
	AddNode(nodeType, content string, relevance float64, metadata map[string]any) (string, error)
	AddEdge(source, target, relationship string, strength float64) error
	ToPromptText() string
}

// GraphNode is the minimal node shape reflection needs back from a graph
// lookup (enough to know a match exists and what id to use as an edge
// endpoint).
type GraphNode struct {
	ID      string
	Content string
}

// WorkingMemory is the narrow surface deep_reflect needs from
// internal/workingmemory.Memory.
type WorkingMemory interface {
	Goals() []WMGoal
	AddGoal(g WMGoal) string
	// ApplyGoalUpdate clamps progress, routes status (one of active,
	// achieved, abandoned, blocked, failed) to an explicit transition, and
	// stores note/blockers — the single call deep_reflect's goal_updates
	// application uses (spec §4.G).
	ApplyGoalUpdate(id string, progress int, status, note string, blockers []string)
	AddThoughtText(content string)
	Thoughts() []WMThought
	ToPromptText() string
	SelfKnowledgeSummary() string
}

// WMGoal mirrors workingmemory.Goal's shape without importing that package,
// avoiding a dependency cycle risk and letting tests supply fakes.
type WMGoal struct {
	ID          string
	Description string
	Type        string
	Priority    string
	Progress    int
	Status      string
	Note        string
	Blockers    []string
	Deadline    *int64 // unix millis, nil when unset
}

// WMThought mirrors workingmemory.Thought.
type WMThought struct {
	Content   string
	Timestamp int64 // unix millis
}

// RelationshipStore is the external durable relationship store (§6,
// internal/relationship).
type RelationshipStore interface {
	Upsert(ctx context.Context, name, context string) error
}
