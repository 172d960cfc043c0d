package workingmemory

import "time"

// Serialize produces a versioned map suitable for persistence.
func (m *Memory) Serialize() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	thoughts := make([]map[string]any, 0, len(m.thoughts))
	for _, t := range m.thoughts {
		tm := map[string]any{
			"content":       t.Content,
			"timestamp":     t.Timestamp.Format(time.RFC3339),
			"cached_tokens": t.CachedTokens,
		}
		if t.ReferencedDate != nil {
			tm["referenced_date"] = t.ReferencedDate.Format(time.RFC3339)
		}
		thoughts = append(thoughts, tm)
	}

	goals := make([]map[string]any, 0, len(m.goals))
	for _, g := range m.goals {
		goals = append(goals, map[string]any{
			"id":          g.ID,
			"description": g.Description,
			"type":        g.Type,
			"priority":    g.Priority,
			"progress":    g.Progress,
			"status":      string(g.Status),
			"note":        g.Note,
			"blockers":    g.Blockers,
		})
	}

	var lastConsolidated string
	if m.LastConsolidatedAt != nil {
		lastConsolidated = m.LastConsolidatedAt.Format(time.RFC3339)
	}

	return map[string]any{
		"schema_version":        currentSchemaVersion,
		"agent_id":              m.AgentID,
		"started_at":            m.StartedAt.Format(time.RFC3339),
		"last_consolidated_at":  lastConsolidated,
		"thoughts":              thoughts,
		"goals":                 goals,
		"name":                  m.name,
		"current_human":         m.currentHuman,
		"relationship_context":  m.relationshipContext,
		"relationship":          m.relationship,
		"conversation":          m.conversation,
		"concerns":              append([]string(nil), m.concerns...),
		"curiosities":           append([]string(nil), m.curiosities...),
		"engagement_level":      m.engagementLevel,
		"thought_count":         m.thoughtCount,
	}
}

// Deserialize restores a Memory from Serialize's output, migrating v1
// payloads (plain-string thoughts/goals) into structured records.
func Deserialize(data map[string]any, cfg Config) *Memory {
	agentID, _ := data["agent_id"].(string)
	m := New(agentID, cfg)

	version := 1
	if v := numberOr(data["schema_version"], 0); v > 0 {
		version = int(v)
	}

	if ts, ok := data["started_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			m.StartedAt = parsed
		}
	}
	if ts, ok := data["last_consolidated_at"].(string); ok && ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			m.LastConsolidatedAt = &parsed
		}
	}

	if version < 2 {
		migrateV1(m, data)
	} else {
		deserializeCurrent(m, data)
	}

	if name, ok := data["name"].(string); ok {
		m.name = name
	}
	if h, ok := data["current_human"].(string); ok {
		m.currentHuman = h
	}
	if rc, ok := data["relationship_context"].(string); ok {
		m.relationshipContext = rc
	}
	if r, ok := data["relationship"].(string); ok {
		m.relationship = r
	}
	if c, ok := data["conversation"].(string); ok {
		m.conversation = c
	}
	if cs := stringSliceValue(data["concerns"]); cs != nil {
		m.concerns = cs
	}
	if cu := stringSliceValue(data["curiosities"]); cu != nil {
		m.curiosities = cu
	}
	if el, ok := data["engagement_level"].(float64); ok {
		m.engagementLevel = clamp01(el)
	}
	m.thoughtCount = int(numberOr(data["thought_count"], 0))

	return m
}

func deserializeCurrent(m *Memory, data map[string]any) {
	for _, rt := range mapSliceValue(data["thoughts"]) {
		m.thoughts = append(m.thoughts, thoughtFromMap(rt))
	}
	for _, rg := range mapSliceValue(data["goals"]) {
		m.goals = append(m.goals, goalFromMap(rg))
	}
}

// migrateV1 handles the legacy schema where thoughts/goals were plain
// strings rather than structured records.
func migrateV1(m *Memory, data map[string]any) {
	for _, content := range stringSliceValue(data["thoughts"]) {
		m.thoughts = append(m.thoughts, Thought{
			Content:      content,
			Timestamp:    m.StartedAt,
			CachedTokens: estimateTokensMigration(content),
		})
	}
	for _, desc := range stringSliceValue(data["goals"]) {
		m.goals = append(m.goals, Goal{
			ID:          newGoalID(),
			Description: desc,
			Type:        "general",
			Priority:    "normal",
			Status:      GoalActive,
		})
	}
}

// mapSliceValue and stringSliceValue accept both the direct Serialize
// output shapes and their JSON-decoded equivalents ([]any elements).
func mapSliceValue(v any) []map[string]any {
	switch raw := v.(type) {
	case []map[string]any:
		return raw
	case []any:
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func stringSliceValue(v any) []string {
	switch raw := v.(type) {
	case []string:
		return append([]string(nil), raw...)
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func numberOr(v any, def float64) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return def
	}
}

func thoughtFromMap(m map[string]any) Thought {
	t := Thought{}
	if c, ok := m["content"].(string); ok {
		t.Content = c
	}
	if ts, ok := m["timestamp"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			t.Timestamp = parsed
		}
	}
	t.CachedTokens = int(numberOr(m["cached_tokens"], 0))
	if rd, ok := m["referenced_date"].(string); ok && rd != "" {
		if parsed, err := time.Parse(time.RFC3339, rd); err == nil {
			t.ReferencedDate = &parsed
		}
	}
	return t
}

func goalFromMap(m map[string]any) Goal {
	g := Goal{Type: "general", Priority: "normal", Status: GoalActive}
	if id, ok := m["id"].(string); ok {
		g.ID = id
	}
	if d, ok := m["description"].(string); ok {
		g.Description = d
	}
	if t, ok := m["type"].(string); ok && t != "" {
		g.Type = t
	}
	if p, ok := m["priority"].(string); ok && p != "" {
		g.Priority = p
	}
	g.Progress = clampProgress(int(numberOr(m["progress"], 0)))
	if s, ok := m["status"].(string); ok && s != "" {
		g.Status = GoalStatus(s)
	}
	if n, ok := m["note"].(string); ok {
		g.Note = n
	}
	if b := stringSliceValue(m["blockers"]); b != nil {
		g.Blockers = b
	}
	return g
}

func estimateTokensMigration(s string) int {
	n := len([]rune(s))
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
