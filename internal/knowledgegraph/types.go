package knowledgegraph

import (
	"sort"
	"strings"
	"sync"
	"time"

	"cogmem/internal/tokenbudget"

	"github.com/google/uuid"
)

// NodeType enumerates the closed set of knowledge node kinds spec §3 names.
type NodeType string

const (
	TypeFact         NodeType = "fact"
	TypeExperience   NodeType = "experience"
	TypeSkill        NodeType = "skill"
	TypeInsight      NodeType = "insight"
	TypeRelationship NodeType = "relationship"
	TypeObservation  NodeType = "observation"
	TypeTrait        NodeType = "trait"
	TypeGoal         NodeType = "goal"
	TypeIntention    NodeType = "intention"
)

var validNodeTypes = map[NodeType]bool{
	TypeFact: true, TypeExperience: true, TypeSkill: true, TypeInsight: true,
	TypeRelationship: true, TypeObservation: true, TypeTrait: true,
	TypeGoal: true, TypeIntention: true,
}

// Node is a single knowledge graph vertex.
type Node struct {
	ID           string
	Type         NodeType
	Content      string
	Relevance    float64
	Confidence   float64
	AccessCount  int
	LastAccessed time.Time
	Pinned       bool
	Metadata     map[string]any
	Embedding    []float32
	CachedTokens int
}

// Edge is keyed by (source, target, relationship); duplicate inserts merge
// by strength rather than by creating parallel edges.
type Edge struct {
	Source       string
	Target       string
	Relationship string
	Strength     float64
}

const (
	minRelevance = 0.01
	maxRelevance = 1.0
)

// Config tunes graph-wide behavior. Zero values are replaced with the
// documented defaults by New.
type Config struct {
	DecayRate        float64 // per day, default 0.1
	MaxNodesPerType  int     // default 500
	PruneThreshold   float64 // default 0.1
	MaxActive        int     // default 50
	DedupThreshold   float64 // default 0.85, reserved for embedding-based dedup
	MaxTokens        *tokenbudget.Spec
	TypeQuotas       map[NodeType]float64 // fraction of MaxTokens, per type
}

func (c Config) withDefaults() Config {
	if c.DecayRate <= 0 {
		c.DecayRate = 0.1
	}
	if c.MaxNodesPerType <= 0 {
		c.MaxNodesPerType = 500
	}
	if c.PruneThreshold <= 0 {
		c.PruneThreshold = 0.1
	}
	if c.MaxActive <= 0 {
		c.MaxActive = 50
	}
	if c.DedupThreshold <= 0 {
		c.DedupThreshold = 0.85
	}
	return c
}

// Graph is the per-agent knowledge graph: nodes, edges, active set, decay
// and pending-approval queues, guarded by an internal mutex so a single
// Graph value is safe for concurrent use by its owning agent's goroutines.
type Graph struct {
	mu sync.Mutex

	AgentID string
	Config  Config

	nodes map[string]*Node
	// edgesBySource indexes edges by source id; edgesTo is the reverse index.
	edgesBySource map[string][]*Edge
	edgesTo       map[string][]*Edge

	activeSet []string // ordered, most-relevant-first is not guaranteed; recomputed on demand

	lastDecayAt time.Time

	pendingFacts     []PendingItem
	pendingLearnings []PendingItem
}

// PendingItem is a candidate fact or learning awaiting human approval.
type PendingItem struct {
	ID        string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
}

// New creates an empty graph for agentID with cfg defaults filled in.
func New(agentID string, cfg Config) *Graph {
	return &Graph{
		AgentID:       agentID,
		Config:        cfg.withDefaults(),
		nodes:         make(map[string]*Node),
		edgesBySource: make(map[string][]*Edge),
		edgesTo:       make(map[string][]*Edge),
	}
}

func newNodeID() string {
	return "node_" + uuid.NewString()
}

func clampRelevance(v float64) float64 {
	if v < minRelevance {
		return minRelevance
	}
	if v > maxRelevance {
		return maxRelevance
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeKey(nodeType NodeType, content string) string {
	return string(nodeType) + "\x00" + strings.ToLower(strings.TrimSpace(content))
}

// NodeCount returns the number of nodes currently stored, regardless of
// active-set membership. Useful for tests and stats surfaces.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// sortedNodeIDsByRelevanceDesc returns all node ids ordered by relevance
// descending, ties broken by id in ascending order.
func (g *Graph) sortedNodeIDsByRelevanceDesc() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
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
