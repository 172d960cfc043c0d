package workingmemory

// Stats is a point-in-time snapshot of working memory size and activity.
type Stats struct {
	ThoughtCount     int
	ActiveThoughts   int
	GoalCount        int
	ActiveGoalCount  int
	ConcernCount     int
	CuriosityCount   int
	ThoughtTokens    int
	EngagementLevel  float64
	UptimeSeconds    int64
}

// Stats returns a snapshot of counts, estimated tokens, and uptime.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	active := 0
	for _, g := range m.goals {
		if g.Status == GoalActive {
			active++
		}
	}
	s := Stats{
		ThoughtCount:    m.thoughtCount,
		ActiveThoughts:  len(m.thoughts),
		GoalCount:       len(m.goals),
		ActiveGoalCount: active,
		ConcernCount:    len(m.concerns),
		CuriosityCount:  len(m.curiosities),
		ThoughtTokens:   m.thoughtTokensLocked(),
		EngagementLevel: m.engagementLevel,
	}
	m.mu.Unlock()
	s.UptimeSeconds = m.Uptime()
	return s
}
