package observability

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// LoggerWithTrace returns a zerolog.Logger enriched with trace_id/span_id
// pulled from ctx, when a span is present.
func LoggerWithTrace(ctx context.Context) *zerolog.Logger {
	l := log.Logger
	if ctx == nil {
		return &l
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
		if sc.HasSpanID() {
			l = l.With().Str("span_id", sc.SpanID().String()).Logger()
		}
		if sc.IsSampled() {
			l = l.With().Bool("trace_sampled", true).Logger()
		}
	}
	return &l
}

// AgentLogger narrows LoggerWithTrace to the one field every cogmem
// facade-level event shares: which agent it happened to. Handle's
// operator-facing events (periodic maintenance sweeps, reflection runs) log
// through this so agent_id is never missing from an otherwise generic
// zerolog line; the lower-level packages (knowledgegraph, contextwindow,
// workingmemory, proposalqueue) log their own agent_id field directly since
// most of their call sites don't carry a context.Context to enrich with a
// trace id.
func AgentLogger(ctx context.Context, agentID string) *zerolog.Logger {
	l := LoggerWithTrace(ctx).With().Str("agent_id", agentID).Logger()
	return &l
}
