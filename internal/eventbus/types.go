// Package eventbus implements the signal/event bus spec §1 and §6 treat as
// an external collaborator: a typed sequence of signals consumed by
// internal/workingmemory.ApplyMemoryEvent / RebuildFromLongTerm, plus the
// interrupt/intent/percept surface reflection and background analysers use.
// Grounded on the teacher's internal/workspaces (Kafka publish) and
// internal/orchestrator (Redis-backed idempotency store) packages.
package eventbus

import (
	"context"
	"time"
)

// Signal is a single bus event, matching spec §6's shape.
type Signal struct {
	Type          string         `json:"type"`
	AgentID       string         `json:"agent_id"`
	Data          map[string]any `json:"data"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	CauseID       string         `json:"cause_id,omitempty"`
}

// Interruption is returned by Interrupted when a target has an active
// interrupt recorded against it.
type Interruption struct {
	Reason               string `json:"reason"`
	AgentID              string `json:"agent_id"`
	TargetID             string `json:"target_id"`
	InterruptedAt        int64  `json:"interrupted_at"`
	ReplacementIntentID  string `json:"replacement_intent_id,omitempty"`
	AllowResume          bool   `json:"allow_resume"`
}

// InterruptOptions tunes Interrupt.
type InterruptOptions struct {
	ReplacementIntentID string
	AllowResume         bool
}

// Handler receives signals a subscriber asked for.
type Handler func(Signal)

// Bus is the full external surface spec §6 assigns to "the bus": publish,
// subscribe, replay, and the interrupt/intent/percept correlation API used
// by reflection and background analysers.
type Bus interface {
	Publish(ctx context.Context, sig Signal) error
	Subscribe(handler Handler) (subID string, err error)
	Unsubscribe(subID string) error

	RecentIntents(agentID string, limit int) []Signal
	RecentPercepts(agentID string, limit int) []Signal

	Interrupt(target, agentID, reason string, opts InterruptOptions) error
	Interrupted(target string) (Interruption, bool)
	ClearInterrupt(target string) error

	// ExecuteAndWait correlates an emitted intent with the first matching
	// percept, bounded by timeout.
	ExecuteAndWait(ctx context.Context, agentID string, intent Signal, timeout time.Duration) (Signal, error)

	// Replay returns every persisted signal for agentID in publish order,
	// the backbone of WorkingMemory.RebuildFromLongTerm. Implementations
	// that cannot replay (e.g. a pure pub/sub bus) return (nil, false).
	Replay(ctx context.Context, agentID string) ([]Signal, bool)

	// SignalCount implements reflection.SignalCounter.
	SignalCount(agentID string) int
}
