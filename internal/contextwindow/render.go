package contextwindow

import (
	"fmt"
	"strings"
)

// ToPromptText renders the window for splicing into a single prompt. In
// multi-layer mode, non-empty sections get headers; in legacy mode, entries
// are rendered oldest-first.
func (w *Window) ToPromptText() string {
	if w.Config.MultiLayer {
		return w.renderMultiLayer()
	}
	return w.renderLegacy()
}

func (w *Window) renderLegacy() string {
	entries := w.LegacyEntries()
	var b strings.Builder
	for i := len(entries) - 1; i >= 0; i-- {
		b.WriteString(entries[i].Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (w *Window) renderMultiLayer() string {
	sections := w.BuildContext()
	var b strings.Builder
	if sections.DistantSummary != "" {
		fmt.Fprintf(&b, "DISTANT CONTEXT\n%s\n\n", sections.DistantSummary)
	}
	if sections.RecentSummary != "" {
		fmt.Fprintf(&b, "RECENT CONTEXT\n%s\n\n", sections.RecentSummary)
	}
	fmt.Fprintf(&b, "CLARITY BOUNDARY\n%s\n\n", sections.ClarityBoundary.Format("2006-01-02T15:04:05Z07:00"))
	if len(sections.FullDetail) > 0 {
		b.WriteString("CONVERSATION\n")
		for i := len(sections.FullDetail) - 1; i >= 0; i-- {
			m := sections.FullDetail[i]
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}
	if len(sections.Retrieved) > 0 {
		b.WriteString("RETRIEVED\n")
		for _, r := range sections.Retrieved {
			fmt.Fprintf(&b, "- %s\n", r.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToSystemPrompt renders the summary tiers only, suitable for a system
// message that should stay stable across turns.
func (w *Window) ToSystemPrompt() string {
	sections := w.BuildContext()
	var b strings.Builder
	if sections.DistantSummary != "" {
		fmt.Fprintf(&b, "DISTANT CONTEXT\n%s\n\n", sections.DistantSummary)
	}
	if sections.RecentSummary != "" {
		fmt.Fprintf(&b, "RECENT CONTEXT\n%s\n\n", sections.RecentSummary)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToUserContext renders the full_detail and retrieved sections only,
// suitable for the final user-turn message.
func (w *Window) ToUserContext() string {
	sections := w.BuildContext()
	var b strings.Builder
	if len(sections.FullDetail) > 0 {
		b.WriteString("CONVERSATION\n")
		for i := len(sections.FullDetail) - 1; i >= 0; i-- {
			m := sections.FullDetail[i]
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}
	if len(sections.Retrieved) > 0 {
		b.WriteString("RETRIEVED\n")
		for _, r := range sections.Retrieved {
			fmt.Fprintf(&b, "- %s\n", r.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
