package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubLLM struct {
	fail    bool
	reply   string
	calls   []string
}

func (s *stubLLM) Complete(ctx context.Context, model, prompt string) (string, error) {
	s.calls = append(s.calls, model)
	if s.fail {
		return "", errors.New("provider unavailable")
	}
	return s.reply, nil
}

func TestAssessComplexitySimpleShortText(t *testing.T) {
	if got := AssessComplexity("hi there"); got != Simple {
		t.Fatalf("expected simple, got %v", got)
	}
}

func TestAssessComplexityHighlyComplexLongTechnicalText(t *testing.T) {
	text := strings.Repeat("The kubernetes api server negotiates async database protocol latency through a concurrency mutex in the microservice runtime compiler middleware cache schema algorithm kernel. ", 40)
	if got := AssessComplexity(text); got != HighlyComplex {
		t.Fatalf("expected highly_complex, got %v", got)
	}
}

func TestRecommendModelSimpleIsLightweightHighlyComplexIsTopTier(t *testing.T) {
	simple := RecommendModel(Simple, ModelChoiceOptions{Preference: PreferOpenAI})
	complexModel := RecommendModel(HighlyComplex, ModelChoiceOptions{Preference: PreferOpenAI})
	if simple == complexModel {
		t.Fatalf("expected distinct models for simple vs highly_complex, got %q for both", simple)
	}
}

func TestRecommendModelCostSensitiveOverride(t *testing.T) {
	got := RecommendModel(HighlyComplex, ModelChoiceOptions{Preference: PreferOpenAI, CostSensitive: true})
	if got != "gpt-5-mini" {
		t.Fatalf("expected cost-sensitive override, got %q", got)
	}
}

func TestSummarizeUsesLLMWhenAvailable(t *testing.T) {
	llm := &stubLLM{reply: "a tidy summary"}
	res := Summarize(context.Background(), llm, "some text to summarize", Options{})
	if res.Fallback {
		t.Fatalf("expected no fallback when llm succeeds")
	}
	if res.Summary != "a tidy summary" {
		t.Fatalf("expected llm summary, got %q", res.Summary)
	}
}

func TestSummarizeFallsBackOnLLMFailure(t *testing.T) {
	llm := &stubLLM{fail: true}
	res := Summarize(context.Background(), llm, "some text to summarize that is reasonably long for a truncation test", Options{})
	if !res.Fallback {
		t.Fatalf("expected fallback on llm failure")
	}
	if res.Summary == "" {
		t.Fatalf("expected a non-empty fallback summary")
	}
}

func TestSummarizeNeverErrorsWithNilLLM(t *testing.T) {
	res := Summarize(context.Background(), nil, "text without any llm configured", Options{})
	if !res.Fallback || res.Summary == "" {
		t.Fatalf("expected deterministic fallback summary with nil llm, got %+v", res)
	}
}

func TestEstimateSummaryLengthFloorAndCeiling(t *testing.T) {
	short := EstimateSummaryLength("a")
	if short < 10 {
		t.Fatalf("expected floor of 10, got %d", short)
	}

	long := strings.Repeat("word ", 1000)
	target := EstimateSummaryLength(long)
	inputTokens := len([]rune(long)) / 4
	if float64(target) > 0.4*float64(inputTokens)+1 {
		t.Fatalf("expected target capped near 0.4x input tokens, got %d vs input %d", target, inputTokens)
	}
}
