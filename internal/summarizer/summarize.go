package summarizer

import (
	"context"

	"cogmem/internal/tokenbudget"
)

// LLM is the narrow surface Summarize needs from a provider. Concrete
// implementations live in internal/llm.
type LLM interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Options tunes Summarize.
type Options struct {
	Preference    Preference
	CostSensitive bool
	ModelOverride string // when set, skips RecommendModel
}

// Result is Summarize's always-ok outcome: callers never see a bare error,
// only a summary that may have come from a truncation fallback.
type Result struct {
	Summary    string
	Complexity Complexity
	ModelUsed  string
	Fallback   bool
}

// Summarize assesses text, recommends (or uses the override) model, calls
// llm, and on any failure falls back to a deterministic truncation summary
// rather than propagating an error.
func Summarize(ctx context.Context, llm LLM, text string, opts Options) Result {
	complexity := AssessComplexity(text)
	model := opts.ModelOverride
	if model == "" {
		model = RecommendModel(complexity, ModelChoiceOptions{Preference: opts.Preference, CostSensitive: opts.CostSensitive})
	}

	if llm != nil {
		if summary, err := llm.Complete(ctx, model, summarizePrompt(text)); err == nil {
			return Result{Summary: summary, Complexity: complexity, ModelUsed: model}
		}
	}

	target := EstimateSummaryLength(text)
	return Result{
		Summary:    deterministicTruncate(text, target),
		Complexity: complexity,
		ModelUsed:  model,
		Fallback:   true,
	}
}

func summarizePrompt(text string) string {
	return "Summarize the following concisely, preserving key facts and decisions:\n\n" + text
}

// EstimateSummaryLength returns a target token count for a summary of text:
// a third of the input's estimated tokens, raised to a floor of 10, then
// capped at 0.4x the input's estimated tokens whatever its complexity. The
// cap wins over the floor, so inputs under 25 tokens get a target below 10.
func EstimateSummaryLength(text string) int {
	inputTokens := tokenbudget.EstimateTokens(text)
	target := inputTokens / 3
	if target < 10 {
		target = 10
	}
	ceiling := int(0.4 * float64(inputTokens))
	if ceiling > 0 && target > ceiling {
		target = ceiling
	}
	return target
}

func deterministicTruncate(text string, targetTokens int) string {
	if targetTokens <= 0 {
		return ""
	}
	maxRunes := targetTokens * 4
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + " [TRUNCATED]"
}
