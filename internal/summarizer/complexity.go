// Package summarizer assesses text complexity, recommends a model, and
// drives the external LLM call that produces a condensed summary, falling
// back to deterministic truncation when the call fails — grounded on the
// teacher's manager.go truncateForSummary and its model-selection heuristics
// in internal/llm/openai_client.go's isThinkingModel.
package summarizer

import "strings"

// Complexity is the assessed difficulty tier of a piece of text.
type Complexity string

const (
	Simple         Complexity = "simple"
	Moderate       Complexity = "moderate"
	Complex        Complexity = "complex"
	HighlyComplex  Complexity = "highly_complex"
)

var technicalTerms = []string{
	"api", "database", "server", "async", "kubernetes", "algorithm",
	"concurrency", "mutex", "protocol", "latency", "throughput", "kernel",
	"compiler", "runtime", "middleware", "microservice", "cache", "schema",
}

// AssessComplexity scores text using word count, average sentence length,
// and technical-term density.
func AssessComplexity(text string) Complexity {
	words := strings.Fields(text)
	wordCount := len(words)
	if wordCount == 0 {
		return Simple
	}

	sentences := splitSentences(text)
	avgSentenceLen := float64(wordCount) / float64(maxInt(len(sentences), 1))

	techCount := 0
	lower := strings.ToLower(text)
	for _, term := range technicalTerms {
		techCount += strings.Count(lower, term)
	}
	techDensity := float64(techCount) / float64(wordCount)

	score := 0
	switch {
	case wordCount > 400:
		score += 2
	case wordCount > 150:
		score++
	}
	switch {
	case avgSentenceLen > 25:
		score += 2
	case avgSentenceLen > 15:
		score++
	}
	switch {
	case techDensity > 0.08:
		score += 2
	case techDensity > 0.03:
		score++
	}

	switch {
	case score >= 5:
		return HighlyComplex
	case score >= 3:
		return Complex
	case score >= 1:
		return Moderate
	default:
		return Simple
	}
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		sentences = append(sentences, b.String())
	}
	return sentences
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
