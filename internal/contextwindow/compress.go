package contextwindow

import (
	"time"

	"cogmem/internal/tokenbudget"

	"github.com/rs/zerolog/log"
)

// NeedsCompression reports whether detail_tokens has exceeded
// ratios.full_detail × max_tokens.
func (w *Window) NeedsCompression() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.needsCompressionLocked()
}

func (w *Window) needsCompressionLocked() bool {
	if !w.Config.MultiLayer {
		return false
	}
	budget := w.maxTokens()
	return float64(w.detailTokens) > w.Config.Ratios.FullDetail*float64(budget)
}

// CompressIfNeeded runs Compress only when NeedsCompression is true and
// SummarizationEnabled is set; otherwise it is a no-op. With summarization
// disabled, adds do not compress inline either: full_detail keeps growing
// until Compress is called directly.
func (w *Window) CompressIfNeeded() error {
	w.mu.Lock()
	needed := w.needsCompressionLocked()
	enabled := w.Config.SummarizationEnabled
	w.mu.Unlock()
	if !needed || !enabled {
		return nil
	}
	return w.Compress()
}

// Compress runs the five-step compression pipeline contract: partition the
// oldest prefix out of full_detail, summarize it into recent_summary,
// flow recent_summary overflow into distant_summary, update counters and
// clarity_boundary, and optionally invoke fact extraction on the demoted
// prefix.
func (w *Window) Compress() error {
	w.mu.Lock()
	budget := w.maxTokens()
	targetDetail := int(w.Config.Ratios.FullDetail * float64(budget))

	prefix, tail := partitionOldest(w.fullDetail, targetDetail)
	w.fullDetail = tail
	w.detailTokens = sumTokens(tail)
	summarizer := w.Summarizer
	factExtractor := w.FactExtractor
	factExtractionEnabled := w.Config.FactExtractionEnabled
	existingRecent := w.recentSummary
	existingDistant := w.distantSummary
	recentBudget := int(w.Config.Ratios.RecentSummary * float64(budget))
	w.mu.Unlock()

	if len(prefix) == 0 {
		return nil
	}

	prefixText := renderMessages(prefix)

	var newRecent string
	if summarizer != nil {
		combined := prefixText
		if existingRecent != "" {
			combined = existingRecent + "\n\n" + prefixText
		}
		summarized, err := summarizer.Summarize(combined, recentBudget)
		if err != nil {
			newRecent = truncateToTokens(combined, recentBudget)
		} else {
			newRecent = summarized
		}
	} else {
		combined := prefixText
		if existingRecent != "" {
			combined = existingRecent + "\n\n" + prefixText
		}
		newRecent = truncateToTokens(combined, recentBudget)
	}

	newDistant := existingDistant
	if tokenbudget.EstimateTokens(newRecent) > recentBudget {
		overflow := newRecent
		if summarizer != nil {
			combined := overflow
			if existingDistant != "" {
				combined = existingDistant + "\n\n" + overflow
			}
			if s, err := summarizer.Summarize(combined, recentBudget/2); err == nil {
				newDistant = s
				newRecent = truncateToTokens(newRecent, recentBudget)
			} else {
				newDistant = truncateToTokens(combined, recentBudget/2)
			}
		} else {
			combined := overflow
			if existingDistant != "" {
				combined = existingDistant + "\n\n" + overflow
			}
			newDistant = truncateToTokens(combined, recentBudget/2)
		}
	}

	w.mu.Lock()
	w.recentSummary = newRecent
	w.distantSummary = newDistant
	w.compressionCount++
	compressionCount := w.compressionCount
	w.lastCompressionAt = time.Now().UTC()
	w.clarityBoundary = w.lastCompressionAt
	w.mu.Unlock()

	if factExtractionEnabled && factExtractor != nil {
		if err := factExtractor.ExtractFacts(prefixText); err != nil {
			log.Warn().Str("agent_id", w.AgentID).Err(err).Msg("context_window_fact_extraction_failed")
		}
	}

	log.Info().Str("agent_id", w.AgentID).Int("demoted_messages", len(prefix)).
		Int("compression_count", compressionCount).Msg("context_window_compressed")

	return nil
}

// partitionOldest splits messages (newest-first) into an oldest prefix to
// demote and a recent tail whose token sum fits within targetDetail.
func partitionOldest(messages []Message, targetDetail int) (prefix, tail []Message) {
	if targetDetail <= 0 {
		return append([]Message(nil), messages...), nil
	}
	used := 0
	cut := len(messages)
	for i, m := range messages {
		if used+m.Tokens > targetDetail {
			cut = i
			break
		}
		used += m.Tokens
	}
	tail = append([]Message(nil), messages[:cut]...)
	prefix = append([]Message(nil), messages[cut:]...)
	return prefix, tail
}

func sumTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += m.Tokens
	}
	return total
}

func renderMessages(messages []Message) string {
	// messages are newest-first; render oldest-first for a coherent summary.
	s := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if s != "" {
			s += "\n"
		}
		s += messages[i].Role + ": " + messages[i].Content
	}
	return s
}

func truncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	maxRunes := maxTokens * 4
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + " [TRUNCATED]"
}
