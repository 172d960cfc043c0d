package knowledgegraph

import (
	"fmt"
	"strings"
)

// PromptOptions controls ToPromptText rendering.
type PromptOptions struct {
	Budget            int // token budget for selected nodes; 0 = active set only
	TypeQuotas        map[NodeType]float64
	IncludeRelations  bool
}

// ToPromptText renders a human-readable block of the most relevant knowledge,
// grouped by type, suitable for splicing into an LLM system or user prompt.
func (g *Graph) ToPromptText(opts PromptOptions) string {
	var ids []string
	if opts.Budget > 0 {
		ids = g.SelectByTokenBudget(opts.Budget, opts.TypeQuotas)
	} else {
		ids = g.ActiveSet()
	}
	if len(ids) == 0 {
		return ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	byType := make(map[NodeType][]*Node)
	order := []NodeType{}
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		if _, seen := byType[n.Type]; !seen {
			order = append(order, n.Type)
		}
		byType[n.Type] = append(byType[n.Type], n)
	}
	var outgoing, incoming map[string][]*Edge
	var contentByID map[string]string
	if opts.IncludeRelations {
		outgoing = g.edgesBySource
		incoming = g.edgesTo
		contentByID = make(map[string]string, len(g.nodes))
		for id, n := range g.nodes {
			contentByID[id] = n.Content
		}
	}

	var b strings.Builder
	b.WriteString("## Knowledge\n")
	for _, t := range order {
		b.WriteString(fmt.Sprintf("\n### %s\n", capitalize(string(t))))
		for _, n := range byType[t] {
			b.WriteString(fmt.Sprintf("- %s", n.Content))
			if n.Pinned {
				b.WriteString(" [pinned]")
			}
			b.WriteString("\n")
			if opts.IncludeRelations {
				for _, e := range incoming[n.ID] {
					b.WriteString(fmt.Sprintf("  ← %s: %s\n", e.Relationship, contentByID[e.Source]))
				}
				for _, e := range outgoing[n.ID] {
					b.WriteString(fmt.Sprintf("  → %s: %s\n", e.Relationship, contentByID[e.Target]))
				}
			}
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
