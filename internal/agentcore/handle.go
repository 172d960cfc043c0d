// Package agentcore is the Facade (spec component H): it owns one Handle
// per agent — knowledge graph, working memory, context window, proposal
// queue, and reflection orchestrator bundled behind a single mutex — plus
// the process-wide Registry that hands those Handles out. Grounded on the
// teacher's internal/persistence/databases.Manager (a sync.Map of per-tenant
// handles) and EvolvingMemory's single-mutex-per-struct pattern, generalized
// here from one struct to the whole per-agent bundle (SPEC_FULL §5).
package agentcore

import (
	"context"
	"sync"
	"time"

	"cogmem/internal/contextwindow"
	"cogmem/internal/knowledgegraph"
	cogmemllm "cogmem/internal/llm"
	"cogmem/internal/proposalqueue"
	"cogmem/internal/reflection"
	"cogmem/internal/workingmemory"
)

// Handle is the per-agent consistency domain: every mutation to the four
// in-process stores happens under mu, mirroring the teacher's
// EvolvingMemory.mu sync.RWMutex guarding a single struct's fields, scaled
// up to guard four collaborating structs at once.
type Handle struct {
	mu sync.Mutex

	AgentID string

	Graph      *knowledgegraph.Graph
	Memory     *workingmemory.Memory
	Window     *contextwindow.Window
	Proposals  *proposalqueue.Queue
	Reflection *reflection.Orchestrator

	deps Deps
}

// withLock runs fn while holding the handle's mutex. External calls (LLM,
// embeddings, bus, relationship store) must never happen inside fn — per
// SPEC_FULL §5, snapshot what's needed, release the lock, then call out.
func (h *Handle) withLock(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// Registry is the process-wide store of per-agent Handles, a sync.Map keyed
// by agent_id exactly as SPEC_FULL §5 specifies, mirroring the teacher's
// databases.Manager session-handle map.
type Registry struct {
	handles sync.Map // agent_id -> *Handle
	deps    Deps
}

// NewRegistry creates a registry sharing one set of external collaborators
// (LLM providers, embedder, bus, relationship store, archive store,
// metrics) across every agent it hands out Handles for.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps}
}

// InitForAgent returns the existing Handle for agentID, or builds and
// stores a fresh one from cfg. Safe for concurrent callers: racing callers
// may each build a Handle, but only one is ever stored and returned per
// agent_id (sync.Map.LoadOrStore); the others are discarded.
func (r *Registry) InitForAgent(agentID string, cfg HandleConfig) *Handle {
	if h, ok := r.handles.Load(agentID); ok {
		return h.(*Handle)
	}
	h := newHandle(agentID, cfg, r.deps)
	actual, _ := r.handles.LoadOrStore(agentID, h)
	return actual.(*Handle)
}

// Get returns the Handle for agentID if one has been initialized.
func (r *Registry) Get(agentID string) (*Handle, bool) {
	h, ok := r.handles.Load(agentID)
	if !ok {
		return nil, false
	}
	return h.(*Handle), true
}

// MaintainAll runs Handle.Maintain for every currently initialized agent,
// the sweep cmd/cogmemd's background ticker drives.
func (r *Registry) MaintainAll(ctx context.Context, now time.Time) {
	r.handles.Range(func(_, v any) bool {
		v.(*Handle).Maintain(ctx, now)
		return true
	})
}

// CleanupForAgent drops agentID's Handle from the registry. The Handle
// itself is not explicitly closed: its collaborators (Graph, Memory, ...)
// are plain in-memory structs with nothing to release; shared external
// collaborators in Deps outlive any single agent.
func (r *Registry) CleanupForAgent(agentID string) {
	r.handles.Delete(agentID)
}

// HandleConfig bundles the per-component config needed to construct a new
// Handle's in-process stores.
type HandleConfig struct {
	Graph         knowledgegraph.Config
	WorkingMemory workingmemory.Config
	ContextWindow contextwindow.Config
	Reflection    reflection.Options
}

func newHandle(agentID string, cfg HandleConfig, deps Deps) *Handle {
	graph := knowledgegraph.New(agentID, cfg.Graph)
	wm := workingmemory.New(agentID, cfg.WorkingMemory)
	window := contextwindow.New(agentID, cfg.ContextWindow)

	if deps.LLM != nil {
		window.Summarizer = summarizerAdapter{
			llm:           cogmemllm.SummarizerCompleter{Provider: deps.LLM},
			preference:    deps.SummarizerPreference,
			costSensitive: deps.SummarizerCostSensitive,
		}
		window.FactExtractor = &llmFactExtractor{graph: graph, provider: deps.LLM, model: deps.ReflectionModel}
	}

	proposals := proposalqueue.New(agentID)

	h := &Handle{
		AgentID:   agentID,
		Graph:     graph,
		Memory:    wm,
		Window:    window,
		Proposals: proposals,
		deps:      deps,
	}

	var rel reflection.RelationshipStore
	if deps.Relationships != nil {
		rel = deps.Relationships
	}
	var reflectionLLM reflection.LLM
	if deps.LLM != nil {
		reflectionLLM = cogmemllm.ReflectionCompleter{Provider: deps.LLM, Model: deps.ReflectionModel}
	}
	var counter reflection.SignalCounter
	if deps.Bus != nil {
		counter = deps.Bus
	}
	h.Reflection = reflection.New(agentID, graphAdapter{graph}, wmAdapter{wm}, rel, reflectionLLM, counter)

	if deps.Bus != nil {
		workingmemory.RebuildFromLongTerm(wm, signalSourceAdapter{bus: deps.Bus})
	}

	return h
}

// Uptime is a small convenience used by status surfaces; it does not need
// the lock since Memory.Uptime is itself goroutine-safe.
func (h *Handle) Uptime() time.Duration {
	return time.Duration(h.Memory.Uptime()) * time.Second
}
