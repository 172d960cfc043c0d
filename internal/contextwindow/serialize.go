package contextwindow

import "time"

const schemaVersion = 2

// CompressionCount returns how many compression passes have run.
func (w *Window) CompressionCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.compressionCount
}

// LastCompressionAt returns when the last compression pass ran; zero when
// none has.
func (w *Window) LastCompressionAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastCompressionAt
}

// ClarityBoundary returns the timestamp dividing summarized past from
// full-detail present.
func (w *Window) ClarityBoundary() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clarityBoundary
}

// ToMap serializes the window into a plain, JSON-survivable map.
func (w *Window) ToMap() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()

	legacy := make([]map[string]any, 0, len(w.legacyEntries))
	for _, e := range w.legacyEntries {
		legacy = append(legacy, map[string]any{
			"kind":       string(e.Kind),
			"content":    e.Content,
			"tokens":     e.Tokens,
			"created_at": e.CreatedAt.Format(time.RFC3339),
		})
	}

	detail := make([]map[string]any, 0, len(w.fullDetail))
	for _, m := range w.fullDetail {
		detail = append(detail, map[string]any{
			"role":       m.Role,
			"content":    m.Content,
			"tokens":     m.Tokens,
			"created_at": m.CreatedAt.Format(time.RFC3339),
		})
	}

	retrieved := make([]map[string]any, 0, len(w.retrievedCtx))
	for _, r := range w.retrievedCtx {
		retrieved = append(retrieved, map[string]any{
			"content":      r.Content,
			"tokens":       r.Tokens,
			"retrieved_at": r.RetrievedAt.Format(time.RFC3339),
		})
	}

	out := map[string]any{
		"schema_version":    schemaVersion,
		"agent_id":          w.AgentID,
		"multi_layer":       w.Config.MultiLayer,
		"entries":           legacy,
		"distant_summary":   w.distantSummary,
		"recent_summary":    w.recentSummary,
		"full_detail":       detail,
		"retrieved_context": retrieved,
		"clarity_boundary":  w.clarityBoundary.Format(time.RFC3339),
		"detail_tokens":     w.detailTokens,
		"retrieved_tokens":  w.retrievedTokens,
		"compression_count": w.compressionCount,
	}
	if !w.lastCompressionAt.IsZero() {
		out["last_compression_at"] = w.lastCompressionAt.Format(time.RFC3339)
	}
	return out
}

// FromMap restores a window from ToMap's output. Older payloads missing
// fields introduced since get their documented defaults; both direct ToMap
// output and JSON-decoded payloads are accepted.
func FromMap(data map[string]any, cfg Config) *Window {
	agentID, _ := data["agent_id"].(string)
	w := New(agentID, cfg)

	for _, re := range anyMapSlice(data["entries"]) {
		e := Entry{
			Kind:    EntryKind(stringField(re["kind"], string(EntryMessage))),
			Content: stringField(re["content"], ""),
			Tokens:  int(numField(re["tokens"], 0)),
		}
		e.CreatedAt = timeField(re["created_at"])
		w.legacyEntries = append(w.legacyEntries, e)
	}

	w.distantSummary = stringField(data["distant_summary"], "")
	w.recentSummary = stringField(data["recent_summary"], "")

	for _, rm := range anyMapSlice(data["full_detail"]) {
		m := Message{
			Role:    stringField(rm["role"], "user"),
			Content: stringField(rm["content"], ""),
			Tokens:  int(numField(rm["tokens"], 0)),
		}
		m.CreatedAt = timeField(rm["created_at"])
		w.fullDetail = append(w.fullDetail, m)
	}
	for _, rr := range anyMapSlice(data["retrieved_context"]) {
		r := Retrieved{
			Content: stringField(rr["content"], ""),
			Tokens:  int(numField(rr["tokens"], 0)),
		}
		r.RetrievedAt = timeField(rr["retrieved_at"])
		w.retrievedCtx = append(w.retrievedCtx, r)
	}

	if ts := timeField(data["clarity_boundary"]); !ts.IsZero() {
		w.clarityBoundary = ts
	}
	w.detailTokens = int(numField(data["detail_tokens"], 0))
	if w.detailTokens == 0 {
		w.detailTokens = sumTokens(w.fullDetail)
	}
	w.retrievedTokens = int(numField(data["retrieved_tokens"], 0))
	w.compressionCount = int(numField(data["compression_count"], 0))
	w.lastCompressionAt = timeField(data["last_compression_at"])
	return w
}

func anyMapSlice(v any) []map[string]any {
	switch raw := v.(type) {
	case []map[string]any:
		return raw
	case []any:
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func stringField(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func numField(v any, def float64) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return def
	}
}

func timeField(v any) time.Time {
	if s, ok := v.(string); ok {
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
