package workingmemory

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func newGoalID() string {
	return "goal_" + uuid.NewString()
}

// SetGoals replaces the goal list wholesale.
func (m *Memory) SetGoals(goals []Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = append([]Goal(nil), goals...)
}

// AddGoal inserts a goal, wrapping zero-valued fields with their documented
// defaults. If a goal with the same ID already exists, it is replaced in
// place rather than duplicated.
func (m *Memory) AddGoal(g Goal) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g.ID == "" {
		g.ID = newGoalID()
	}
	if g.Type == "" {
		g.Type = "general"
	}
	if g.Priority == "" {
		g.Priority = "normal"
	}
	if g.Status == "" {
		g.Status = GoalActive
	}
	g.Progress = clampProgress(g.Progress)

	for i, existing := range m.goals {
		if existing.ID == g.ID {
			m.goals[i] = g
			return g.ID
		}
	}
	m.goals = append(m.goals, g)
	return g.ID
}

// AddGoalText is a convenience wrapper for string-only goal creation.
func (m *Memory) AddGoalText(description string) string {
	return m.AddGoal(Goal{Description: description})
}

// RemoveGoal deletes a goal by id with no audit trail.
func (m *Memory) RemoveGoal(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeGoalLocked(id)
}

func (m *Memory) removeGoalLocked(id string) {
	for i, g := range m.goals {
		if g.ID == id {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return
		}
	}
}

// CompleteGoal marks a goal achieved and records an audit thought.
func (m *Memory) CompleteGoal(id string) {
	m.mu.Lock()
	var desc string
	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals[i].Status = GoalAchieved
			m.goals[i].Progress = 100
			desc = m.goals[i].Description
			break
		}
	}
	m.mu.Unlock()
	if desc != "" {
		m.AddThoughtText("Completed goal: " + desc)
	}
}

// AbandonGoal marks a goal abandoned and records an audit thought.
func (m *Memory) AbandonGoal(id string) {
	m.mu.Lock()
	var desc string
	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals[i].Status = GoalAbandoned
			desc = m.goals[i].Description
			break
		}
	}
	m.mu.Unlock()
	if desc != "" {
		m.AddThoughtText("Abandoned goal: " + desc)
	}
}

// UpdateGoalProgress sets progress, clamped to [0,100].
func (m *Memory) UpdateGoalProgress(id string, progress int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals[i].Progress = clampProgress(progress)
			return
		}
	}
}

var validGoalStatuses = map[GoalStatus]bool{
	GoalActive: true, GoalAchieved: true, GoalAbandoned: true,
	GoalBlocked: true, GoalFailed: true,
}

// ApplyGoalUpdate is the single entry point Reflection's goal_updates
// section routes through (spec §4.G): progress is clamped, status — when it
// names one of the five recognized lifecycle states — drives an explicit
// transition (an unrecognized or empty status leaves the goal's current
// status untouched), note is appended when non-empty, and blockers replace
// the stored blocker list when non-nil. Unlike CompleteGoal/AbandonGoal,
// which are the direct, note-free API a caller uses for its own goal
// bookkeeping, this is reflection's one richer call so the LLM's commentary
// on *why* a goal moved is never silently dropped.
func (m *Memory) ApplyGoalUpdate(id string, progress int, status, note string, blockers []string) {
	m.mu.Lock()
	var desc string
	var newStatus GoalStatus
	found := false
	for i := range m.goals {
		if m.goals[i].ID != id {
			continue
		}
		m.goals[i].Progress = clampProgress(progress)
		if s := GoalStatus(status); validGoalStatuses[s] {
			m.goals[i].Status = s
		}
		if note != "" {
			if m.goals[i].Note != "" {
				m.goals[i].Note += "\n"
			}
			m.goals[i].Note += note
		}
		if blockers != nil {
			m.goals[i].Blockers = append([]string(nil), blockers...)
		}
		desc = m.goals[i].Description
		newStatus = m.goals[i].Status
		found = true
		break
	}
	m.mu.Unlock()
	if !found {
		log.Debug().Str("agent_id", m.AgentID).Str("goal_id", id).
			Msg("working_memory_goal_update_missed_unknown_id")
		return
	}

	switch newStatus {
	case GoalAchieved:
		m.AddThoughtText("Completed goal: " + desc)
	case GoalAbandoned, GoalFailed:
		m.AddThoughtText("Abandoned goal: " + desc)
	case GoalBlocked:
		m.AddThoughtText("Blocked goal: " + desc)
	}
	log.Info().Str("agent_id", m.AgentID).Str("goal_id", id).Str("status", string(newStatus)).
		Int("progress", progress).Int("blocker_count", len(blockers)).
		Msg("working_memory_goal_updated")
}

// Goals returns a copy of the current goal list.
func (m *Memory) Goals() []Goal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Goal(nil), m.goals...)
}

// SetName, SetCurrentHuman, SetRelationshipContext, SetRelationship, and
// SetConversation are straightforward setters; passing "" clears the field.
func (m *Memory) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

func (m *Memory) SetCurrentHuman(human string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentHuman = human
}

func (m *Memory) SetRelationshipContext(ctx string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationshipContext = ctx
}

func (m *Memory) SetRelationship(rel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationship = rel
}

func (m *Memory) SetConversation(conv string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversation = conv
}

// AddConcern appends a concern if not already present (dedup, FIFO order).
func (m *Memory) AddConcern(concern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concerns = appendDedup(m.concerns, concern)
}

// ResolveConcern removes a concern.
func (m *Memory) ResolveConcern(concern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concerns = removeString(m.concerns, concern)
}

// AddCuriosity appends a curiosity if not already present.
func (m *Memory) AddCuriosity(curiosity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.curiosities = appendDedup(m.curiosities, curiosity)
}

// SatisfyCuriosity removes a curiosity.
func (m *Memory) SatisfyCuriosity(curiosity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.curiosities = removeString(m.curiosities, curiosity)
}

// Concerns returns a copy of the concern list.
func (m *Memory) Concerns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.concerns...)
}

// Curiosities returns a copy of the curiosity list.
func (m *Memory) Curiosities() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.curiosities...)
}

// SetEngagementLevel clamps x to [0,1] and stores it.
func (m *Memory) SetEngagementLevel(x float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engagementLevel = clamp01(x)
}

// AdjustEngagement adds delta to the current engagement level, clamped.
func (m *Memory) AdjustEngagement(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engagementLevel = clamp01(m.engagementLevel + delta)
}

// EngagementLevel returns the current engagement level.
func (m *Memory) EngagementLevel() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engagementLevel
}

func appendDedup(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func removeString(list []string, item string) []string {
	for i, existing := range list {
		if existing == item {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
