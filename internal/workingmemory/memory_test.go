package workingmemory

import "testing"

func TestAddThoughtPrependsNewestFirst(t *testing.T) {
	m := New("agent-1", Config{})
	m.AddThoughtText("first")
	m.AddThoughtText("second")

	thoughts := m.Thoughts()
	if len(thoughts) != 2 {
		t.Fatalf("expected 2 thoughts, got %d", len(thoughts))
	}
	if thoughts[0].Content != "second" {
		t.Fatalf("expected newest thought first, got %q", thoughts[0].Content)
	}
}

func TestAddThoughtEnforcesMaxThoughts(t *testing.T) {
	m := New("agent-1", Config{MaxThoughts: 3})
	for i := 0; i < 10; i++ {
		m.AddThoughtText("thought")
	}
	if len(m.Thoughts()) != 3 {
		t.Fatalf("expected bounded at 3 thoughts, got %d", len(m.Thoughts()))
	}
	if m.ThoughtCount() != 10 {
		t.Fatalf("expected lifetime thought_count of 10, got %d", m.ThoughtCount())
	}
}

func TestGoalProgressClamps(t *testing.T) {
	m := New("agent-1", Config{})
	id := m.AddGoalText("ship the thing")
	m.UpdateGoalProgress(id, 500)
	goals := m.Goals()
	if goals[0].Progress != 100 {
		t.Fatalf("expected progress clamped to 100, got %d", goals[0].Progress)
	}
	m.UpdateGoalProgress(id, -50)
	goals = m.Goals()
	if goals[0].Progress != 0 {
		t.Fatalf("expected progress clamped to 0, got %d", goals[0].Progress)
	}
}

func TestApplyGoalUpdateStoresNoteAndBlockersForBlockedStatus(t *testing.T) {
	m := New("agent-1", Config{})
	id := m.AddGoalText("ship the thing")

	m.ApplyGoalUpdate(id, 40, "blocked", "waiting on design review", []string{"design-review", "legal-signoff"})

	goals := m.Goals()
	if goals[0].Status != GoalBlocked {
		t.Fatalf("expected goal blocked, got %v", goals[0].Status)
	}
	if goals[0].Progress != 40 {
		t.Fatalf("expected progress 40, got %d", goals[0].Progress)
	}
	if goals[0].Note != "waiting on design review" {
		t.Fatalf("expected note stored, got %q", goals[0].Note)
	}
	if len(goals[0].Blockers) != 2 || goals[0].Blockers[0] != "design-review" {
		t.Fatalf("expected blockers stored, got %v", goals[0].Blockers)
	}
	thoughts := m.Thoughts()
	if len(thoughts) != 1 || thoughts[0].Content != "Blocked goal: ship the thing" {
		t.Fatalf("expected blocked audit thought, got %+v", thoughts)
	}
}

func TestApplyGoalUpdateIgnoresUnknownStatus(t *testing.T) {
	m := New("agent-1", Config{})
	id := m.AddGoalText("ship the thing")

	m.ApplyGoalUpdate(id, 10, "in_review", "", nil)

	goals := m.Goals()
	if goals[0].Status != GoalActive {
		t.Fatalf("expected status untouched by an unrecognized value, got %v", goals[0].Status)
	}
	if goals[0].Progress != 10 {
		t.Fatalf("expected progress still applied, got %d", goals[0].Progress)
	}
}

func TestCompleteGoalRecordsAuditThought(t *testing.T) {
	m := New("agent-1", Config{})
	id := m.AddGoalText("finish the report")
	m.CompleteGoal(id)

	goals := m.Goals()
	if goals[0].Status != GoalAchieved {
		t.Fatalf("expected goal achieved, got %v", goals[0].Status)
	}
	thoughts := m.Thoughts()
	if len(thoughts) != 1 || thoughts[0].Content != "Completed goal: finish the report" {
		t.Fatalf("expected audit thought, got %+v", thoughts)
	}
}

func TestEngagementClamps(t *testing.T) {
	m := New("agent-1", Config{})
	m.SetEngagementLevel(5)
	if m.EngagementLevel() != 1 {
		t.Fatalf("expected clamp to 1, got %v", m.EngagementLevel())
	}
	m.SetEngagementLevel(-5)
	if m.EngagementLevel() != 0 {
		t.Fatalf("expected clamp to 0, got %v", m.EngagementLevel())
	}
	m.SetEngagementLevel(0.5)
	m.AdjustEngagement(10)
	if m.EngagementLevel() != 1 {
		t.Fatalf("expected adjust to clamp at 1, got %v", m.EngagementLevel())
	}
}

func TestConcernAndCuriosityDedup(t *testing.T) {
	m := New("agent-1", Config{})
	m.AddConcern("running low on budget")
	m.AddConcern("running low on budget")
	if len(m.Concerns()) != 1 {
		t.Fatalf("expected dedup, got %d concerns", len(m.Concerns()))
	}
	m.ResolveConcern("running low on budget")
	if len(m.Concerns()) != 0 {
		t.Fatalf("expected concern resolved")
	}
}

func signalScript() []Signal {
	return []Signal{
		{Type: "identity_change", Data: map[string]any{"name": "Arbor"}},
		{Type: "thought_recorded", Data: map[string]any{"content": "noticed a pattern"}},
		{Type: "goal", Data: map[string]any{"event_type": "added", "description": "learn Go"}},
		{Type: "engagement_changed", Data: map[string]any{"level": 0.8}},
		{Type: "concern_added", Data: map[string]any{"concern": "token budget"}},
		{Type: "unknown_future_event", Data: map[string]any{"whatever": true}},
	}
}

func TestSignalReplayIsDeterministic(t *testing.T) {
	m1 := New("agent-1", Config{})
	m2 := New("agent-1", Config{})

	for _, sig := range signalScript() {
		m1.ApplyMemoryEvent(sig)
	}
	for _, sig := range signalScript() {
		m2.ApplyMemoryEvent(sig)
	}

	if m1.name != m2.name {
		t.Fatalf("expected identical name after replay, got %q and %q", m1.name, m2.name)
	}
	if m1.EngagementLevel() != m2.EngagementLevel() {
		t.Fatalf("expected identical engagement after replay")
	}
	if len(m1.Goals()) != len(m2.Goals()) || len(m1.Goals()) != 1 {
		t.Fatalf("expected identical goal state after replay")
	}
	if len(m1.Thoughts()) != len(m2.Thoughts()) {
		t.Fatalf("expected identical thought state after replay")
	}
}

func TestUnknownSignalTypeIsNoOp(t *testing.T) {
	m := New("agent-1", Config{})
	before := m.Serialize()
	m.ApplyMemoryEvent(Signal{Type: "something_nobody_invented_yet", Data: map[string]any{"x": 1}})
	after := m.Serialize()

	if before["name"] != after["name"] || before["engagement_level"] != after["engagement_level"] {
		t.Fatalf("expected unknown signal type to leave state unchanged")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	m := New("agent-1", Config{})
	m.SetName("Arbor")
	m.AddThoughtText("a thought to keep")
	m.AddGoalText("a goal to keep")
	m.SetEngagementLevel(0.75)

	data := m.Serialize()
	restored := Deserialize(data, Config{})

	if restored.name != "Arbor" {
		t.Fatalf("expected name to survive round trip, got %q", restored.name)
	}
	if len(restored.Thoughts()) != 1 || restored.Thoughts()[0].Content != "a thought to keep" {
		t.Fatalf("expected thought to survive round trip")
	}
	if len(restored.Goals()) != 1 {
		t.Fatalf("expected goal to survive round trip")
	}
	if restored.EngagementLevel() != 0.75 {
		t.Fatalf("expected engagement to survive round trip, got %v", restored.EngagementLevel())
	}
}

func TestMigrateV1PlainStringThoughtsAndGoals(t *testing.T) {
	legacy := map[string]any{
		"schema_version": 1,
		"agent_id":       "agent-1",
		"thoughts":       []string{"an old plain thought"},
		"goals":          []string{"an old plain goal"},
	}
	restored := Deserialize(legacy, Config{})

	if len(restored.Thoughts()) != 1 || restored.Thoughts()[0].Content != "an old plain thought" {
		t.Fatalf("expected v1 thought migrated, got %+v", restored.Thoughts())
	}
	goals := restored.Goals()
	if len(goals) != 1 || goals[0].Description != "an old plain goal" {
		t.Fatalf("expected v1 goal migrated, got %+v", goals)
	}
	if goals[0].Status != GoalActive {
		t.Fatalf("expected migrated goal to default to active status")
	}
}
