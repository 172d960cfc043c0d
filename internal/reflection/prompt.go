package reflection

import "fmt"

const reflectionPromptTemplate = `Evaluating your goals is your top priority right now.

## Your Goals
%s

## Self Knowledge
%s

## Knowledge Graph
%s

## Working Memory
%s

## Recent Thinking
%s

## Recent Activity
%s

Respond with a single JSON object, and nothing else, with these keys:
goal_updates, new_goals, insights, learnings, knowledge_nodes, knowledge_edges, relationships, self_insight_suggestions, thinking.

goal_updates: [{id, progress, status, note, blockers}]
new_goals: [{description, priority, type}]
insights: [{content, importance}]
learnings: [{content, confidence, category}]
knowledge_nodes: [{name, type, content}]
knowledge_edges: [{source_name, target_name, relationship, strength}]
relationships: [{name, context}]
self_insight_suggestions: [string]
thinking: string
`

func buildPrompt(ctx DeepContext) string {
	return fmt.Sprintf(reflectionPromptTemplate,
		orNone(ctx.Goals), orNone(ctx.SelfKnowledge), orNone(ctx.KnowledgeGraph),
		orNone(ctx.WorkingMemory), orNone(ctx.RecentThinking), orNone(ctx.RecentActivity))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
