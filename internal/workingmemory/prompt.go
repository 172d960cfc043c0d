package workingmemory

import (
	"fmt"
	"strings"
	"time"
)

// PromptOptions controls ToPromptText/ToPromptContext rendering.
type PromptOptions struct {
	IncludeIdentity bool
	MaxThoughts     int // 0 = all
}

// ToPromptText renders the non-empty sections, in order: Identity,
// Relationship Context, Active Goals, Recent Thoughts, Current Concerns,
// Things I'm Curious About. Thoughts are grouped under temporal headers.
func (m *Memory) ToPromptText(opts PromptOptions) string {
	m.mu.Lock()
	name := m.name
	relCtx := m.relationshipContext
	goals := append([]Goal(nil), m.goals...)
	thoughts := append([]Thought(nil), m.thoughts...)
	concerns := append([]string(nil), m.concerns...)
	curiosities := append([]string(nil), m.curiosities...)
	m.mu.Unlock()

	var b strings.Builder

	if opts.IncludeIdentity && name != "" {
		fmt.Fprintf(&b, "## Identity\nI am %s.\n\n", name)
	}
	if relCtx != "" {
		fmt.Fprintf(&b, "## Relationship Context\n%s\n\n", relCtx)
	}

	if activeGoals := activeGoalsOnly(goals); len(activeGoals) > 0 {
		b.WriteString("## Active Goals\n")
		for _, g := range activeGoals {
			fmt.Fprintf(&b, "- %s (%d%%)\n", g.Description, g.Progress)
		}
		b.WriteString("\n")
	}

	if len(thoughts) > 0 {
		if opts.MaxThoughts > 0 && len(thoughts) > opts.MaxThoughts {
			thoughts = thoughts[:opts.MaxThoughts]
		}
		b.WriteString("## Recent Thoughts\n")
		b.WriteString(renderThoughtsByDay(thoughts))
		b.WriteString("\n")
	}

	if len(concerns) > 0 {
		b.WriteString("## Current Concerns\n")
		for _, c := range concerns {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if len(curiosities) > 0 {
		b.WriteString("## Things I'm Curious About\n")
		for _, c := range curiosities {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func activeGoalsOnly(goals []Goal) []Goal {
	var out []Goal
	for _, g := range goals {
		if g.Status == GoalActive || g.Status == GoalBlocked {
			out = append(out, g)
		}
	}
	return out
}

func renderThoughtsByDay(thoughts []Thought) string {
	now := time.Now().UTC()
	var b strings.Builder
	lastHeader := ""
	for _, t := range thoughts {
		header := dayHeader(now, t.Timestamp)
		if header != lastHeader {
			fmt.Fprintf(&b, "### %s\n", header)
			lastHeader = header
		}
		line := t.Content
		if t.ReferencedDate != nil {
			line = fmt.Sprintf("%s (refers to %s)", line, t.ReferencedDate.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func dayHeader(now, ts time.Time) string {
	days := int(now.Sub(ts).Hours() / 24)
	switch {
	case sameDay(now, ts):
		return "Today"
	case days == 1 || (days == 0 && now.Day() != ts.Day()):
		return "Yesterday"
	default:
		if days < 0 {
			days = 0
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ToPromptContext returns the same information as ToPromptText, as a
// structured map with plain-string thought/goal extractions.
func (m *Memory) ToPromptContext(opts PromptOptions) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	thoughtStrs := make([]string, 0, len(m.thoughts))
	limit := len(m.thoughts)
	if opts.MaxThoughts > 0 && opts.MaxThoughts < limit {
		limit = opts.MaxThoughts
	}
	for _, t := range m.thoughts[:limit] {
		thoughtStrs = append(thoughtStrs, t.Content)
	}

	goalStrs := make([]string, 0, len(m.goals))
	for _, g := range m.goals {
		goalStrs = append(goalStrs, g.Description)
	}

	return map[string]any{
		"name":                  m.name,
		"relationship_context":  m.relationshipContext,
		"thoughts":              thoughtStrs,
		"goals":                 goalStrs,
		"concerns":              append([]string(nil), m.concerns...),
		"curiosities":           append([]string(nil), m.curiosities...),
		"engagement_level":      m.engagementLevel,
	}
}
