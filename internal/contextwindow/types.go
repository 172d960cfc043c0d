// Package contextwindow implements the layered conversation/context buffer
// an agent renders into LLM prompts: a legacy single-list mode grounded on
// the teacher's rolling chat-summary manager, and a multi-layer mode adding
// distant/recent summary tiers ahead of a full-detail tail.
package contextwindow

import (
	"sync"
	"time"

	"cogmem/internal/tokenbudget"
)

// EntryKind distinguishes legacy-mode entries.
type EntryKind string

const (
	EntryMessage EntryKind = "message"
	EntrySummary EntryKind = "summary"
)

// Entry is a single legacy-mode list item.
type Entry struct {
	Kind      EntryKind
	Content   string
	Tokens    int
	CreatedAt time.Time
}

// Message is a structured multi-layer entry.
type Message struct {
	Role      string
	Content   string
	Tokens    int
	CreatedAt time.Time
}

// Retrieved is a semantically-retrieved item added to the retrieved_context
// section.
type Retrieved struct {
	Content    string
	Tokens     int
	RetrievedAt time.Time
}

// Ratios bounds each multi-layer section as a fraction of MaxTokens.
type Ratios struct {
	DistantSummary float64
	RecentSummary  float64
	FullDetail     float64
	Retrieved      float64
}

func (r Ratios) withDefaults() Ratios {
	if r.DistantSummary == 0 && r.RecentSummary == 0 && r.FullDetail == 0 && r.Retrieved == 0 {
		return Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.5, Retrieved: 0.1}
	}
	return r
}

// Config tunes a Window. MultiLayer selects mode; MaxTokens is a spec
// resolved against a model's context (§4.A).
type Config struct {
	MultiLayer            bool
	MaxTokens             tokenbudget.Spec
	Model                 string
	Ratios                Ratios
	SummarizationEnabled  bool
	FactExtractionEnabled bool
	SummaryThreshold      float64 // legacy mode: usage ratio that triggers should_summarize?
}

func (c Config) withDefaults() Config {
	if c.SummaryThreshold <= 0 {
		c.SummaryThreshold = 0.8
	}
	c.Ratios = c.Ratios.withDefaults()
	return c
}

// Summarizer produces a condensed version of text, used by the compression
// pipeline. Implementations wrap an LLM call (internal/summarizer) or, in
// tests, a deterministic stub.
type Summarizer interface {
	Summarize(text string, targetTokens int) (string, error)
}

// FactExtractor is invoked on demoted full_detail prefixes when
// FactExtractionEnabled is set. Failures are caught and logged, never fatal.
type FactExtractor interface {
	ExtractFacts(text string) error
}

// Window is a per-agent context window. Safe for concurrent use.
type Window struct {
	mu sync.Mutex

	AgentID string
	Config  Config

	Summarizer    Summarizer
	FactExtractor FactExtractor

	// legacy mode
	legacyEntries []Entry

	// multi-layer mode
	distantSummary  string
	recentSummary   string
	fullDetail      []Message
	retrievedCtx    []Retrieved
	clarityBoundary time.Time

	detailTokens    int
	retrievedTokens int

	compressionCount   int
	lastCompressionAt  time.Time
}

// New creates an empty window for agentID.
func New(agentID string, cfg Config) *Window {
	w := &Window{
		AgentID:         agentID,
		Config:          cfg.withDefaults(),
		clarityBoundary: time.Now().UTC(),
	}
	return w
}

func (w *Window) modelContext() int {
	return tokenbudget.ModelContextSize(w.Config.Model)
}

func (w *Window) maxTokens() int {
	return tokenbudget.ResolveForModel(w.Config.MaxTokens, w.Config.Model)
}
