// Package reflection implements the periodic introspection pass that reads
// an agent's knowledge graph, working memory, and recent signal activity,
// asks an LLM to propose goal/knowledge/insight updates, and applies the
// response back into those subsystems. Grounded on the teacher's
// internal/agent/memory/remem.go Think-Act-Refine control loop, adapted from
// a per-task memory controller into a periodic whole-agent introspection
// pass.
package reflection

import (
	"context"
	"sync"
	"time"
)

// Options tunes a reflection pass.
type Options struct {
	IntervalMS int64
	Threshold  int
	Force      bool
}

// HistoryEntry records a single completed reflection.
type HistoryEntry struct {
	At         time.Time
	DurationMS int64
	Result     Result
	Err        error
}

// Orchestrator drives reflection for a single agent. Safe for concurrent use.
type Orchestrator struct {
	mu sync.Mutex

	AgentID string

	Graph         KnowledgeGraph
	WorkingMemory WorkingMemory
	Relationships RelationshipStore
	LLM           LLM
	SignalCounter SignalCounter

	lastReflectionAt time.Time
	signalBaseline   int
	history          []HistoryEntry
}

// New creates an orchestrator wiring the given collaborators.
func New(agentID string, graph KnowledgeGraph, wm WorkingMemory, rel RelationshipStore, llm LLM, signals SignalCounter) *Orchestrator {
	return &Orchestrator{
		AgentID:       agentID,
		Graph:         graph,
		WorkingMemory: wm,
		Relationships: rel,
		LLM:           llm,
		SignalCounter: signals,
	}
}

// SignalCounter reports how many signals have been observed for an agent
// since the process started (or since the bus was last reset). Reflection
// only cares about the delta since the last reflection.
type SignalCounter interface {
	SignalCount(agentID string) int
}

// LLM is the narrow surface deep_reflect needs.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// History returns a copy of the reflection history.
func (o *Orchestrator) History() []HistoryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]HistoryEntry(nil), o.history...)
}
