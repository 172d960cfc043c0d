package agentcore

import (
	"cogmem/internal/archive"
	"cogmem/internal/embedding"
	"cogmem/internal/eventbus"
	"cogmem/internal/llm"
	"cogmem/internal/observability"
	"cogmem/internal/relationship"
	"cogmem/internal/summarizer"
)

// Deps bundles the process-wide external collaborators every Handle in a
// Registry shares: an LLM provider plus the model it should reflect/summarize
// with, the embedding/index pair, the signal bus, the relationship store,
// the archive store, and telemetry. Nil fields degrade gracefully (spec
// §1's graceful-degradation contract): a Deps with everything nil still
// produces working, in-memory-only Handles — newHandle only wires a
// collaborator in when its Deps field is non-nil.
type Deps struct {
	LLM                     llm.Provider
	ReflectionModel         string
	SummarizerPreference    summarizer.Preference
	SummarizerCostSensitive bool

	Embedder embedding.Embedder
	Index    embedding.Index

	Bus eventbus.Bus

	Relationships relationship.Store

	Archive archive.Store

	Metrics *observability.Metrics
}
