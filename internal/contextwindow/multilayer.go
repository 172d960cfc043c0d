package contextwindow

import (
	"encoding/json"
	"time"

	"cogmem/internal/tokenbudget"
)

// AddMessage prepends a structured message to full_detail. No-op in legacy
// mode.
func (w *Window) AddMessage(msg Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.Config.MultiLayer {
		return
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.Tokens == 0 {
		msg.Tokens = tokenbudget.EstimateTokens(msg.Content)
	}
	w.fullDetail = append([]Message{msg}, w.fullDetail...)
	w.detailTokens += msg.Tokens
}

// AddUserMessage is a convenience wrapper over AddMessage for role "user".
func (w *Window) AddUserMessage(content string) {
	w.AddMessage(Message{Role: "user", Content: content})
}

// AddAssistantResponse is a convenience wrapper over AddMessage for role
// "assistant".
func (w *Window) AddAssistantResponse(content string) {
	w.AddMessage(Message{Role: "assistant", Content: content})
}

// ToolResult is a single tool invocation's output.
type ToolResult struct {
	Name    string
	Content any
}

// AddToolResults prepends a batch of tool results as one message per result.
// An empty list is a no-op. Map/struct content is encoded as JSON-like text.
func (w *Window) AddToolResults(results []ToolResult) {
	if len(results) == 0 {
		return
	}
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		w.AddMessage(Message{Role: "tool", Content: encodeToolResult(r)})
	}
}

func encodeToolResult(r ToolResult) string {
	if s, ok := r.Content.(string); ok {
		return s
	}
	raw, err := json.Marshal(r.Content)
	if err != nil {
		return r.Name
	}
	return string(raw)
}

// AddRetrieved stores item in retrieved_context, deduped against existing
// entries by exact content.
func (w *Window) AddRetrieved(content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.Config.MultiLayer {
		return
	}
	for _, r := range w.retrievedCtx {
		if r.Content == content {
			return
		}
	}
	tokens := tokenbudget.EstimateTokens(content)
	w.retrievedCtx = append(w.retrievedCtx, Retrieved{
		Content:     content,
		Tokens:      tokens,
		RetrievedAt: time.Now().UTC(),
	})
	w.retrievedTokens += tokens
}

// Sections is the ordered, non-empty-filtered result of BuildContext.
type Sections struct {
	DistantSummary  string
	RecentSummary   string
	ClarityBoundary time.Time
	FullDetail      []Message
	Retrieved       []Retrieved
}

// BuildContext returns the non-empty sections in contractual order:
// distant_summary, recent_summary, clarity_boundary (always present),
// full_detail, retrieved.
func (w *Window) BuildContext() Sections {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Sections{
		DistantSummary:  w.distantSummary,
		RecentSummary:   w.recentSummary,
		ClarityBoundary: w.clarityBoundary,
		FullDetail:      append([]Message(nil), w.fullDetail...),
		Retrieved:       append([]Retrieved(nil), w.retrievedCtx...),
	}
}

// DetailTokens returns the current full_detail token count.
func (w *Window) DetailTokens() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detailTokens
}

// RetrievedTokens returns the current retrieved_context token count.
func (w *Window) RetrievedTokens() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.retrievedTokens
}
