package reflection

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Result is DeepReflect's successful outcome.
type Result struct {
	Thinking string
	Counts   AppliedCounts
}

// DeepReflect builds a deep context, calls the LLM, parses its response
// tolerant of markdown fences, applies every section, and records the pass
// in history with its duration. LLM errors surface as an error return
// rather than a panic; a successful call always returns Result even when
// the response was unparseable (all sections default empty in that case).
func (o *Orchestrator) DeepReflect(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()

	recentActivity := ""
	if o.SignalCounter != nil {
		recentActivity = formatSignalCount(o.SignalCounter.SignalCount(o.AgentID))
	}

	deepCtx := o.buildDeepContext(recentActivity)
	prompt := buildPrompt(deepCtx)

	raw, err := o.LLM.Complete(ctx, prompt)
	if err != nil {
		o.recordHistory(start, Result{}, err)
		log.Warn().Str("agent_id", o.AgentID).Err(err).
			Dur("elapsed", time.Since(start)).Msg("reflection_deep_reflect_failed")
		return Result{}, err
	}

	resp := parseLLMResponse(raw)
	counts := o.applyResponse(ctx, resp)
	result := Result{Thinking: resp.Thinking, Counts: counts}

	o.mu.Lock()
	o.lastReflectionAt = time.Now().UTC()
	if o.SignalCounter != nil {
		o.signalBaseline = o.SignalCounter.SignalCount(o.AgentID)
	}
	o.mu.Unlock()

	o.recordHistory(start, result, nil)
	log.Info().Str("agent_id", o.AgentID).Dur("elapsed", time.Since(start)).
		Int("goals_updated", counts.GoalsUpdated).Int("nodes_created", counts.NodesCreated).
		Int("suggestions_added", counts.SuggestionsAdded).Msg("reflection_deep_reflect_completed")
	return result, nil
}

func (o *Orchestrator) recordHistory(start time.Time, result Result, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, HistoryEntry{
		At:         time.Now().UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Result:     result,
		Err:        err,
	})
}

func formatSignalCount(n int) string {
	if n == 0 {
		return "(no recent signals)"
	}
	return "recent signal count: " + strconv.Itoa(n)
}
