package reflection

import (
	"fmt"
	"strings"
	"time"
)

func priorityEmoji(priority string) string {
	switch strings.ToLower(priority) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium", "normal":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

func progressBar(progress int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// renderGoals formats the active-goals section with priority emojis,
// progress bars, deadline warnings, and a trailing blocked-goals section.
func renderGoals(goals []WMGoal, now time.Time) string {
	var active, blocked []WMGoal
	for _, g := range goals {
		if g.Status == "blocked" {
			blocked = append(blocked, g)
			continue
		}
		if g.Status == "active" || g.Status == "" {
			active = append(active, g)
		}
	}

	var b strings.Builder
	if len(active) > 0 {
		b.WriteString("## Goals\n")
		for _, g := range active {
			fmt.Fprintf(&b, "%s %s [%s] %d%%\n", priorityEmoji(g.Priority), g.Description, progressBar(g.Progress), g.Progress)
			if g.Deadline != nil {
				deadline := time.UnixMilli(*g.Deadline)
				if deadline.Before(now) {
					fmt.Fprintf(&b, "  ⚠️ overdue (was due %s)\n", deadline.Format("2006-01-02"))
				} else if deadline.Sub(now) < 72*time.Hour {
					fmt.Fprintf(&b, "  ⚠️ due soon (%s)\n", deadline.Format("2006-01-02"))
				}
			}
		}
	}

	if len(blocked) > 0 {
		b.WriteString("\n## Blocked Goals\n")
		for _, g := range blocked {
			fmt.Fprintf(&b, "- %s", g.Description)
			if len(g.Blockers) > 0 {
				fmt.Fprintf(&b, " (blocked by: %s)", strings.Join(g.Blockers, ", "))
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// DeepContext is the assembled material deep_reflect hands to the LLM.
type DeepContext struct {
	Goals           string
	SelfKnowledge   string
	KnowledgeGraph  string
	WorkingMemory   string
	RecentThinking  string
	RecentActivity  string
}

func (o *Orchestrator) buildDeepContext(recentActivity string) DeepContext {
	goals := o.WorkingMemory.Goals()
	thoughts := o.WorkingMemory.Thoughts()

	var thinking strings.Builder
	limit := len(thoughts)
	if limit > 10 {
		limit = 10
	}
	for _, t := range thoughts[:limit] {
		thinking.WriteString("- " + t.Content + "\n")
	}

	return DeepContext{
		Goals:          renderGoals(goals, time.Now().UTC()),
		SelfKnowledge:  o.WorkingMemory.SelfKnowledgeSummary(),
		KnowledgeGraph: o.Graph.ToPromptText(),
		WorkingMemory:  o.WorkingMemory.ToPromptText(),
		RecentThinking: strings.TrimRight(thinking.String(), "\n"),
		RecentActivity: recentActivity,
	}
}
