package contextwindow

import (
	"time"

	"cogmem/internal/tokenbudget"
)

// AddEntry prepends a legacy-mode entry. No-op in multi-layer mode.
func (w *Window) AddEntry(kind EntryKind, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Config.MultiLayer {
		return
	}
	e := Entry{Kind: kind, Content: content, CreatedAt: time.Now().UTC()}
	e.Tokens = tokenbudget.EstimateTokens(content)
	w.legacyEntries = append([]Entry{e}, w.legacyEntries...)
}

// ApplySummary replaces the older prefix (everything past keepRecent most
// recent entries) with a single summary entry, when there are more than
// keepRecent entries. No-op in multi-layer mode.
func (w *Window) ApplySummary(text string, keepRecent int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Config.MultiLayer {
		return
	}
	if len(w.legacyEntries) <= keepRecent {
		return
	}
	recent := append([]Entry(nil), w.legacyEntries[:keepRecent]...)
	summary := Entry{Kind: EntrySummary, Content: text, CreatedAt: time.Now().UTC()}
	summary.Tokens = tokenbudget.EstimateTokens(text)
	w.legacyEntries = append(recent, summary)
}

// ShouldSummarize reports whether legacy-mode usage has crossed
// summary_threshold × max_tokens. No-op (false) in multi-layer mode.
func (w *Window) ShouldSummarize() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Config.MultiLayer {
		return false
	}
	budget := w.maxTokens()
	if budget <= 0 {
		return false
	}
	used := 0
	for _, e := range w.legacyEntries {
		used += e.Tokens
	}
	return float64(used) >= w.Config.SummaryThreshold*float64(budget)
}

// LegacyEntries returns a copy of the legacy entry list, newest-first.
func (w *Window) LegacyEntries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.legacyEntries...)
}
