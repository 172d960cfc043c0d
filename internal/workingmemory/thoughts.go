package workingmemory

import (
	"time"

	"cogmem/internal/tokenbudget"
)

// ThoughtInput is either a plain string (wrapped with defaults) or a
// partially-populated Thought.
type ThoughtInput struct {
	Content        string
	ReferencedDate *time.Time
}

// AddThought prepends a new thought (newest-first), then enforces
// MaxThoughts and, if Config.MaxTokens is set, the token budget.
func (m *Memory) AddThought(input ThoughtInput) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Thought{
		Content:        input.Content,
		Timestamp:      time.Now().UTC(),
		ReferencedDate: input.ReferencedDate,
	}
	t.CachedTokens = tokenbudget.EstimateTokens(t.Content)

	m.thoughts = append([]Thought{t}, m.thoughts...)
	m.thoughtCount++
	m.enforceBoundsLocked()
}

// AddThoughtText is a convenience wrapper over AddThought for plain strings.
func (m *Memory) AddThoughtText(content string) {
	m.AddThought(ThoughtInput{Content: content})
}

func (m *Memory) enforceBoundsLocked() {
	if len(m.thoughts) > m.Config.MaxThoughts {
		m.thoughts = m.thoughts[:m.Config.MaxThoughts]
	}
	if m.Config.MaxTokens == nil {
		return
	}
	budget := tokenbudget.Resolve(*m.Config.MaxTokens, tokenbudget.DefaultModelContext)
	m.trimToBudgetLocked(budget)
}

// TrimToBudget drops oldest thoughts until total thought tokens fit within
// the resolved budget.
func (m *Memory) TrimToBudget(spec tokenbudget.Spec, modelContext int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trimToBudgetLocked(tokenbudget.Resolve(spec, modelContext))
}

func (m *Memory) trimToBudgetLocked(budget int) {
	if budget <= 0 {
		return
	}
	for m.thoughtTokensLocked() > budget && len(m.thoughts) > 0 {
		m.thoughts = m.thoughts[:len(m.thoughts)-1]
	}
}

func (m *Memory) thoughtTokensLocked() int {
	total := 0
	for _, t := range m.thoughts {
		total += t.CachedTokens
	}
	return total
}

// ThoughtTokens returns the total estimated tokens across all thoughts.
func (m *Memory) ThoughtTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thoughtTokensLocked()
}

// Thoughts returns a copy of the thought list, newest-first.
func (m *Memory) Thoughts() []Thought {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Thought(nil), m.thoughts...)
}

// ThoughtCount returns the lifetime count of thoughts added, not bounded by
// MaxThoughts.
func (m *Memory) ThoughtCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thoughtCount
}

// MarkConsolidated sets LastConsolidatedAt to now.
func (m *Memory) MarkConsolidated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	m.LastConsolidatedAt = &now
}
