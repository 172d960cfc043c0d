package contextwindow

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cogmem/internal/tokenbudget"
)

type stubSummarizer struct {
	fail bool
}

func (s stubSummarizer) Summarize(text string, targetTokens int) (string, error) {
	if s.fail {
		return "", errors.New("boom")
	}
	return "summary: " + text, nil
}

func TestLegacyModeAddEntryPrepends(t *testing.T) {
	w := New("agent-1", Config{})
	w.AddEntry(EntryMessage, "first")
	w.AddEntry(EntryMessage, "second")

	entries := w.LegacyEntries()
	if entries[0].Content != "second" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Content)
	}
}

func TestLegacyApplySummaryReplacesOlderPrefix(t *testing.T) {
	w := New("agent-1", Config{})
	for i := 0; i < 5; i++ {
		w.AddEntry(EntryMessage, "msg")
	}
	w.ApplySummary("condensed", 2)
	entries := w.LegacyEntries()
	if len(entries) != 3 {
		t.Fatalf("expected keep_recent(2) + 1 summary = 3 entries, got %d", len(entries))
	}
	if entries[2].Kind != EntrySummary || entries[2].Content != "condensed" {
		t.Fatalf("expected summary entry at tail, got %+v", entries[2])
	}
}

func TestMultiLayerModeIsNoOpInLegacy(t *testing.T) {
	w := New("agent-1", Config{MultiLayer: false})
	w.AddMessage(Message{Role: "user", Content: "hi"})
	if len(w.BuildContext().FullDetail) != 0 {
		t.Fatalf("expected AddMessage to be a no-op in legacy mode")
	}
}

func TestLegacyModeIsNoOpInMultiLayer(t *testing.T) {
	w := New("agent-1", Config{MultiLayer: true, MaxTokens: tokenbudget.FixedSpec(1000)})
	w.AddEntry(EntryMessage, "hi")
	if len(w.LegacyEntries()) != 0 {
		t.Fatalf("expected AddEntry to be a no-op in multi-layer mode")
	}
}

func TestAddRetrievedDedupsByExactContent(t *testing.T) {
	w := New("agent-1", Config{MultiLayer: true, MaxTokens: tokenbudget.FixedSpec(1000)})
	w.AddRetrieved("fact one")
	w.AddRetrieved("fact one")
	w.AddRetrieved("fact two")

	sections := w.BuildContext()
	if len(sections.Retrieved) != 2 {
		t.Fatalf("expected dedup to leave 2 retrieved items, got %d", len(sections.Retrieved))
	}
}

func TestAddToolResultsEmptyListIsNoOp(t *testing.T) {
	w := New("agent-1", Config{MultiLayer: true, MaxTokens: tokenbudget.FixedSpec(1000)})
	w.AddToolResults(nil)
	if len(w.BuildContext().FullDetail) != 0 {
		t.Fatalf("expected empty tool-result list to be a no-op")
	}
}

func TestBuildContextOmitsEmptySections(t *testing.T) {
	w := New("agent-1", Config{MultiLayer: true, MaxTokens: tokenbudget.FixedSpec(1000)})
	w.AddUserMessage("hello")

	text := w.ToPromptText()
	if wantContains := "CONVERSATION"; !strings.Contains(text,wantContains) {
		t.Fatalf("expected rendered prompt to include %q, got %q", wantContains, text)
	}
	if strings.Contains(text,"DISTANT CONTEXT") {
		t.Fatalf("expected empty distant_summary section to be omitted")
	}
}

func TestNeedsCompressionTriggersAboveRatio(t *testing.T) {
	w := New("agent-1", Config{
		MultiLayer:           true,
		MaxTokens:            tokenbudget.FixedSpec(100),
		Ratios:               Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.2, Retrieved: 0.1},
		SummarizationEnabled: true,
	})
	w.AddUserMessage("this message is long enough to push detail tokens over the small full_detail ratio budget for this test case")

	if !w.NeedsCompression() {
		t.Fatalf("expected compression to be needed once detail_tokens exceeds ratio budget")
	}
}

func TestCompressPartitionsAndSummarizes(t *testing.T) {
	w := New("agent-1", Config{
		MultiLayer:           true,
		MaxTokens:            tokenbudget.FixedSpec(1000),
		Ratios:               Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.1, Retrieved: 0.1},
		SummarizationEnabled: true,
	})
	w.Summarizer = stubSummarizer{}

	for i := 0; i < 20; i++ {
		w.AddUserMessage("message content that consumes a meaningful number of estimated tokens per add")
	}

	before := w.DetailTokens()
	if err := w.CompressIfNeeded(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := w.DetailTokens()

	if after >= before {
		t.Fatalf("expected compression to shrink full_detail tokens: before %d after %d", before, after)
	}
	sections := w.BuildContext()
	if sections.RecentSummary == "" {
		t.Fatalf("expected recent_summary to be populated after compression")
	}
}

func TestCompressDemotesPrefixUnderRatioBudget(t *testing.T) {
	// max_tokens=100, full_detail ratio 0.5: ten ~50-token messages must
	// compress down to detail_tokens <= 50 with a populated recent_summary
	// and compression_count 1.
	w := New("agent-1", Config{
		MultiLayer:           true,
		MaxTokens:            tokenbudget.FixedSpec(100),
		Ratios:               Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.5, Retrieved: 0.1},
		SummarizationEnabled: true,
	})
	w.Summarizer = stubSummarizer{}

	fiftyTokens := strings.Repeat("abcd ", 40) // ~200 runes ≈ 50 tokens
	for i := 0; i < 10; i++ {
		w.AddUserMessage(fiftyTokens)
	}

	if !w.NeedsCompression() {
		t.Fatalf("expected compression needed")
	}
	if err := w.CompressIfNeeded(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.DetailTokens(); got > 50 {
		t.Fatalf("expected detail_tokens <= 50 after compression, got %d", got)
	}
	if w.BuildContext().RecentSummary == "" {
		t.Fatalf("expected recent_summary populated")
	}
	if got := w.CompressionCount(); got != 1 {
		t.Fatalf("expected compression_count 1, got %d", got)
	}
}

func TestCompressIfNeededIdempotentWithinCycle(t *testing.T) {
	w := New("agent-1", Config{
		MultiLayer:           true,
		MaxTokens:            tokenbudget.FixedSpec(1000),
		Ratios:               Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.1, Retrieved: 0.1},
		SummarizationEnabled: true,
	})
	w.Summarizer = stubSummarizer{}
	for i := 0; i < 20; i++ {
		w.AddUserMessage("message content that consumes a meaningful number of estimated tokens per add")
	}

	if err := w.CompressIfNeeded(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	countAfterFirst := w.CompressionCount()
	summaryAfterFirst := w.BuildContext().RecentSummary
	detailAfterFirst := w.DetailTokens()

	if err := w.CompressIfNeeded(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.CompressionCount() != countAfterFirst {
		t.Fatalf("expected second CompressIfNeeded without new messages to be a no-op")
	}
	if w.BuildContext().RecentSummary != summaryAfterFirst || w.DetailTokens() != detailAfterFirst {
		t.Fatalf("expected state unchanged by the idempotent second call")
	}
}

func TestToMapFromMapRoundTrip(t *testing.T) {
	cfg := Config{
		MultiLayer: true,
		MaxTokens:  tokenbudget.FixedSpec(1000),
	}
	w := New("agent-1", cfg)
	w.AddUserMessage("hello there")
	w.AddAssistantResponse("hi, how can I help")
	w.AddRetrieved("a retrieved fragment")

	restored := FromMap(w.ToMap(), cfg)
	sections := restored.BuildContext()
	if len(sections.FullDetail) != 2 || sections.FullDetail[0].Content != "hi, how can I help" {
		t.Fatalf("expected newest-first full_detail to survive round trip, got %+v", sections.FullDetail)
	}
	if len(sections.Retrieved) != 1 {
		t.Fatalf("expected retrieved context to survive round trip")
	}
	if restored.DetailTokens() != w.DetailTokens() {
		t.Fatalf("expected detail token counter preserved: %d != %d", restored.DetailTokens(), w.DetailTokens())
	}
}

func TestFromMapAcceptsJSONDecodedPayload(t *testing.T) {
	cfg := Config{MultiLayer: true, MaxTokens: tokenbudget.FixedSpec(1000)}
	w := New("agent-1", cfg)
	w.AddUserMessage("survives json")

	raw, err := json.Marshal(w.ToMap())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := FromMap(decoded, cfg)
	sections := restored.BuildContext()
	if len(sections.FullDetail) != 1 || sections.FullDetail[0].Content != "survives json" {
		t.Fatalf("expected JSON-decoded payload restored, got %+v", sections.FullDetail)
	}
}

func TestPresetBalancedEnablesSummarization(t *testing.T) {
	cfg := Preset("balanced")
	if !cfg.MultiLayer || !cfg.SummarizationEnabled {
		t.Fatalf("expected balanced preset multi-layer with summarization on, got %+v", cfg)
	}
	compact := Preset("compact")
	if compact.SummarizationEnabled {
		t.Fatalf("expected compact preset to rely on truncation, not summarization")
	}
}

func TestCompressFallsBackToTruncationOnSummarizerError(t *testing.T) {
	w := New("agent-1", Config{
		MultiLayer:           true,
		MaxTokens:            tokenbudget.FixedSpec(1000),
		Ratios:               Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.1, Retrieved: 0.1},
		SummarizationEnabled: true,
	})
	w.Summarizer = stubSummarizer{fail: true}

	for i := 0; i < 20; i++ {
		w.AddUserMessage("message content that consumes a meaningful number of estimated tokens per add")
	}

	if err := w.Compress(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sections := w.BuildContext()
	if sections.RecentSummary == "" {
		t.Fatalf("expected truncation fallback to still populate recent_summary")
	}
}
