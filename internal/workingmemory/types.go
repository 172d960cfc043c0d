// Package workingmemory implements the bounded, versioned rolling state an
// agent keeps about its own thoughts, goals, concerns, curiosities, and
// engagement. State is fully rebuildable by replaying a signal log, mirroring
// the teacher's rolling chat-summary manager but applied to first-person
// agent state rather than chat history.
package workingmemory

import (
	"sync"
	"time"

	"cogmem/internal/tokenbudget"
)

const currentSchemaVersion = 2

// Thought is a single recorded thought, newest-first in Memory.thoughts.
type Thought struct {
	Content        string
	Timestamp      time.Time
	CachedTokens   int
	ReferencedDate *time.Time
}

// GoalStatus is the lifecycle state of a Goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalAchieved  GoalStatus = "achieved"
	GoalAbandoned GoalStatus = "abandoned"
	GoalBlocked   GoalStatus = "blocked"
	GoalFailed    GoalStatus = "failed"
)

// Goal is a tracked objective.
type Goal struct {
	ID          string
	Description string
	Type        string // default "general"
	Priority    string // "normal" by default, or a numeric-ish string set by Reflection
	Progress    int    // 0..100
	Status      GoalStatus
	Note        string
	Blockers    []string
	Deadline    *time.Time
}

// Config tunes bounding behavior. Zero values take the documented defaults.
type Config struct {
	MaxThoughts int
	MaxTokens   *tokenbudget.Spec
}

func (c Config) withDefaults() Config {
	if c.MaxThoughts <= 0 {
		c.MaxThoughts = 200
	}
	return c
}

// Memory is a single agent's working memory. Safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	AgentID string
	Config  Config

	StartedAt          time.Time
	LastConsolidatedAt *time.Time

	thoughts []Thought
	goals    []Goal

	name                string
	currentHuman        string
	relationshipContext string
	relationship        string
	conversation        string

	concerns    []string
	curiosities []string

	engagementLevel float64

	thoughtCount int
	schemaVer    int
}

// New creates an empty working memory for agentID.
func New(agentID string, cfg Config) *Memory {
	return &Memory{
		AgentID:         agentID,
		Config:          cfg.withDefaults(),
		StartedAt:       time.Now().UTC(),
		engagementLevel: 0.5,
		schemaVer:       currentSchemaVersion,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Uptime returns seconds since StartedAt, or 0 if StartedAt is zero.
func (m *Memory) Uptime() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartedAt.IsZero() {
		return 0
	}
	return int64(time.Since(m.StartedAt).Seconds())
}
