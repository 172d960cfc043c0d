package llm

import "context"

// Message is a single chat turn exchanged with a provider. Summarization,
// reflection, and fact extraction only ever exchange text, so the shape
// stays at role + content.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ToolSchema describes a tool a caller may advertise to the model. The
// memory engine's own calls never advertise tools (summaries and
// reflections are plain completions). The argument stays in the Chat
// signature, but none of the providers in this package forwards it to the
// model: tools passed to Chat are accepted and ignored.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// StreamHandler receives incremental output from ChatStream.
type StreamHandler interface {
	OnDelta(content string)
}

type Provider interface {
	Chat(ctx context.Context, msgs []Message, tools []ToolSchema, model string) (Message, error)
	ChatStream(ctx context.Context, msgs []Message, tools []ToolSchema, model string, h StreamHandler) error
}
