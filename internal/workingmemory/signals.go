package workingmemory

import "time"

// Signal is a single event from the external signal/event bus, matching the
// taxonomy spec §6 names. Data keys are event-specific; unrecognised types
// and malformed data leave state unchanged rather than erroring.
type Signal struct {
	Type          string
	Data          map[string]any
	Timestamp     time.Time
	CorrelationID string
	CauseID       string
}

// SignalSource replays persisted signals for an agent in order. Bus
// implementations in internal/eventbus satisfy this.
type SignalSource interface {
	ReplaySignals(agentID string) ([]Signal, error)
}

// ApplyMemoryEvent mutates m according to signal's type. Unknown types are a
// no-op — this is the sole mutation path signal replay relies on, so every
// other mutator in this package must be expressible as a sequence of these
// events for replay-determinism to hold.
func (m *Memory) ApplyMemoryEvent(sig Signal) {
	switch sig.Type {
	case "identity_change":
		if name, ok := sig.Data["name"].(string); ok {
			m.SetName(name)
		}
	case "thought_recorded":
		content, ok := sig.Data["thought_preview"].(string)
		if !ok {
			content, ok = sig.Data["content"].(string)
		}
		if ok {
			m.AddThoughtText(content)
		}
	case "goal":
		m.applyGoalEvent(sig)
	case "relationship_changed":
		if human, ok := sig.Data["human_name"].(string); ok {
			m.SetCurrentHuman(human)
		}
		if ctx, ok := sig.Data["context"].(string); ok {
			m.SetRelationshipContext(ctx)
		}
	case "engagement_changed":
		if level, ok := sig.Data["level"].(float64); ok {
			m.SetEngagementLevel(level)
		}
	case "concern_added":
		if c, ok := sig.Data["concern"].(string); ok {
			m.AddConcern(c)
		}
	case "concern_resolved":
		if c, ok := sig.Data["concern"].(string); ok {
			m.ResolveConcern(c)
		}
	case "curiosity_added":
		if c, ok := sig.Data["curiosity"].(string); ok {
			m.AddCuriosity(c)
		}
	case "curiosity_satisfied":
		if c, ok := sig.Data["curiosity"].(string); ok {
			m.SatisfyCuriosity(c)
		}
	case "conversation_changed":
		if conv, ok := sig.Data["conversation"].(string); ok {
			m.SetConversation(conv)
		}
	default:
		// unknown event types leave state unchanged
	}
}

func (m *Memory) applyGoalEvent(sig Signal) {
	eventType, _ := sig.Data["event_type"].(string)
	switch eventType {
	case "added":
		desc, _ := sig.Data["description"].(string)
		if desc != "" {
			m.AddGoalText(desc)
		}
	case "achieved":
		if id, ok := sig.Data["id"].(string); ok {
			m.CompleteGoal(id)
		}
	case "abandoned":
		if id, ok := sig.Data["id"].(string); ok {
			m.AbandonGoal(id)
		}
	}
}

// RebuildFromLongTerm replays every persisted signal for m.AgentID from src,
// in order, returning the resulting memory. When src is nil (the bus is
// unavailable), m is returned unchanged.
func RebuildFromLongTerm(m *Memory, src SignalSource) *Memory {
	if src == nil {
		return m
	}
	signals, err := src.ReplaySignals(m.AgentID)
	if err != nil {
		return m
	}
	for _, sig := range signals {
		m.ApplyMemoryEvent(sig)
	}
	return m
}
