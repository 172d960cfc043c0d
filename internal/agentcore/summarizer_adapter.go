package agentcore

import (
	"context"
	"strings"

	"cogmem/internal/llm"
	"cogmem/internal/summarizer"
)

// summarizerAdapter narrows internal/summarizer.Summarize's free function
// down to contextwindow.Summarizer's (text, targetTokens) -> (string, error)
// method shape. targetTokens is advisory: summarizer.Summarize picks its own
// target from the input length, the same way the teacher's rolling
// chat-summary manager does not take an external token target either; the
// compression pipeline's recent/distant split already tolerates an
// over-length summary by demoting the overflow into distant_summary.
type summarizerAdapter struct {
	llm           summarizer.LLM
	preference    summarizer.Preference
	costSensitive bool
}

func (a summarizerAdapter) Summarize(text string, targetTokens int) (string, error) {
	res := summarizer.Summarize(context.Background(), a.llm, text, summarizer.Options{
		Preference:    a.preference,
		CostSensitive: a.costSensitive,
	})
	return res.Summary, nil
}

// llmFactExtractor implements contextwindow.FactExtractor by asking an LLM
// to pull standalone facts out of a demoted conversation prefix and queuing
// them as pending facts for human approval, grounded on the teacher's
// internal/llm provider.Chat call pattern (same request shape the
// Reflection and Summarizer completers use).
type llmFactExtractor struct {
	graph    factGraph
	provider llm.Provider
	model    string
}

// factGraph is the narrow surface llmFactExtractor needs from
// *knowledgegraph.Graph.
type factGraph interface {
	AddPendingFact(content string, metadata map[string]any) string
}

func (e *llmFactExtractor) ExtractFacts(text string) error {
	if e.provider == nil || text == "" {
		return nil
	}
	msg, err := e.provider.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: factExtractionPrompt(text)},
	}, nil, e.model)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(msg.Content, "\n") {
		fact := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if fact != "" {
			e.graph.AddPendingFact(fact, map[string]any{"source": "fact_extraction"})
		}
	}
	return nil
}

func factExtractionPrompt(text string) string {
	return "Extract standalone factual statements from the following text. " +
		"Reply with one fact per line, no numbering or commentary:\n\n" + text
}
