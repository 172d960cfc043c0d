package agentcore

import (
	"context"
	"time"

	"cogmem/internal/archive"
	"cogmem/internal/contextwindow"
	"cogmem/internal/knowledgegraph"
	"cogmem/internal/observability"
	"cogmem/internal/proposalqueue"
	"cogmem/internal/reflection"
	"cogmem/internal/workingmemory"
)

// AddThought records a working-memory thought under the handle's lock. The
// thought text is also handed to the embedding store fire-and-forget so a
// retrieval layer over thoughts stays warm; embed_async is a no-op without
// an embedder and never fails the add.
func (h *Handle) AddThought(content string) {
	h.withLock(func() { h.Memory.AddThoughtText(content) })
	if h.deps.Embedder != nil {
		h.deps.Embedder.EmbedAsync(context.Background(), "thoughts", h.AgentID, content, map[string]string{"agent_id": h.AgentID})
	}
}

// AddGoal records a new working-memory goal and returns its id.
func (h *Handle) AddGoal(g workingmemory.Goal) (id string) {
	h.withLock(func() { id = h.Memory.AddGoal(g) })
	return id
}

// CompleteGoal, AbandonGoal and UpdateGoalProgress mirror the corresponding
// Memory methods under the handle lock, since goal state is part of the
// same consistency domain as the graph and proposal queue.
func (h *Handle) CompleteGoal(id string) { h.withLock(func() { h.Memory.CompleteGoal(id) }) }
func (h *Handle) AbandonGoal(id string)  { h.withLock(func() { h.Memory.AbandonGoal(id) }) }

func (h *Handle) UpdateGoalProgress(id string, progress int) {
	h.withLock(func() { h.Memory.UpdateGoalProgress(id, progress) })
}

// AddFact inserts content directly as a fact node, bypassing the proposal
// queue; used when the caller (rather than an analyser) is the source of
// truth, e.g. a tool result known to be authoritative.
func (h *Handle) AddFact(content string, relevance float64, metadata map[string]any) (id string, err error) {
	h.withLock(func() {
		id, err = h.Graph.AddNode(knowledgegraph.NodeSpec{
			Type: knowledgegraph.TypeFact, Content: content, Relevance: relevance, Metadata: metadata,
		})
	})
	if err == nil && h.deps.Metrics != nil {
		h.deps.Metrics.NodesAdded.Add(context.Background(), 1)
	}
	if err == nil {
		h.embedAndIndex(id, content, string(knowledgegraph.TypeFact))
	}
	return id, err
}

// embedAndIndex embeds content in the background, writes the vector back
// onto the node (so in-process SemanticSearch can score it), and upserts it
// into the external vector index when one is configured. Every step
// degrades gracefully: no embedder means no-op, an embed or upsert failure
// leaves the node usable through substring recall.
func (h *Handle) embedAndIndex(nodeID, content, nodeType string) {
	if h.deps.Embedder == nil || nodeID == "" || content == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		vecs, err := h.deps.Embedder.Embed(ctx, []string{content})
		if err != nil || len(vecs) == 0 {
			return
		}
		h.withLock(func() { _ = h.Graph.SetEmbedding(nodeID, vecs[0]) })
		if h.deps.Index != nil {
			if err := h.deps.Index.Upsert(ctx, nodeID, vecs[0], map[string]string{
				"agent_id": h.AgentID,
				"type":     nodeType,
			}); err != nil {
				observability.AgentLogger(ctx, h.AgentID).Debug().Err(err).
					Str("node_id", nodeID).Msg("vector_index_upsert_failed")
			}
		}
	}()
}

// Recall runs a substring recall over the knowledge graph under the lock.
func (h *Handle) Recall(query string, opts knowledgegraph.RecallOptions) (out []knowledgegraph.Node) {
	h.withLock(func() { out = h.Graph.Recall(query, opts) })
	return out
}

// SemanticRecall embeds query externally (outside the lock), asks the
// external vector index for this agent's nearest nodes when one is
// configured, and falls back to the in-process cosine scan over cached
// embeddings otherwise — the cosine-similarity path additive to Recall's
// exact-substring match (spec Open Question (a)). Returns nil, nil when no
// embedder is configured rather than erroring; an unreachable index
// degrades to the in-process path the same way.
func (h *Handle) SemanticRecall(ctx context.Context, query string, limit int) ([]knowledgegraph.ScoredNode, error) {
	if h.deps.Embedder == nil {
		return nil, nil
	}
	vecs, err := h.deps.Embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		return nil, err
	}

	if h.deps.Index != nil {
		hits, err := h.deps.Index.SimilaritySearch(ctx, vecs[0], limit, map[string]string{"agent_id": h.AgentID})
		if err != nil {
			observability.AgentLogger(ctx, h.AgentID).Debug().Err(err).
				Msg("vector_index_search_failed_falling_back")
		} else if len(hits) > 0 {
			var out []knowledgegraph.ScoredNode
			h.withLock(func() {
				for _, hit := range hits {
					// The index may hold nodes pruned since their upsert;
					// skip anything the live graph no longer knows.
					if n, err := h.Graph.GetNode(hit.ID); err == nil {
						out = append(out, knowledgegraph.ScoredNode{Node: *n, Score: hit.Score})
					}
				}
			})
			if len(out) > 0 {
				return out, nil
			}
		}
	}

	var out []knowledgegraph.ScoredNode
	h.withLock(func() { out = h.Graph.SemanticSearch(vecs[0], limit) })
	return out, nil
}

// Propose enqueues a proposal for later accept/reject/defer.
func (h *Handle) Propose(spec proposalqueue.CreateSpec) (id string, err error) {
	h.withLock(func() { id, err = h.Proposals.Create(spec) })
	return id, err
}

// AcceptProposal routes an accepted proposal's content into the knowledge
// graph via graphAdapter, which satisfies proposalqueue.NodeSink.
func (h *Handle) AcceptProposal(id string) (result proposalqueue.AcceptResult, err error) {
	h.withLock(func() { result, err = h.Proposals.Accept(id, graphAdapter{h.Graph}) })
	if err == nil && h.deps.Metrics != nil {
		h.deps.Metrics.ProposalsAccepted.Add(context.Background(), 1)
	}
	if err == nil {
		if n, gerr := h.Graph.GetNode(result.NodeID); gerr == nil {
			h.embedAndIndex(n.ID, n.Content, string(n.Type))
		}
	}
	return result, err
}

// AcceptAllProposals accepts every pending proposal, best-effort.
func (h *Handle) AcceptAllProposals() (results []proposalqueue.AcceptResult) {
	h.withLock(func() { results = h.Proposals.AcceptAll(graphAdapter{h.Graph}) })
	if h.deps.Metrics != nil && len(results) > 0 {
		h.deps.Metrics.ProposalsAccepted.Add(context.Background(), int64(len(results)))
	}
	return results
}

// RejectProposal and DeferProposal mirror Queue's methods under the lock.
func (h *Handle) RejectProposal(id string) (err error) {
	h.withLock(func() { err = h.Proposals.Reject(id) })
	if err == nil && h.deps.Metrics != nil {
		h.deps.Metrics.ProposalsRejected.Add(context.Background(), 1)
	}
	return err
}

func (h *Handle) DeferProposal(id string) (err error) {
	h.withLock(func() { err = h.Proposals.Defer(id) })
	return err
}

// AddUserMessage, AddAssistantResponse and AddToolResults append to the
// context window, compressing afterward if the new content pushed the
// window over budget. Compression calls the configured Summarizer and
// FactExtractor, both of which make LLM calls; those happen inside
// CompressIfNeeded which is itself called under the lock, an intentional
// deviation from the "never call out under the lock" rule for this one
// path, because compression must serialize with concurrent window writes
// to avoid reordering recent/distant boundaries. Callers needing strict
// non-blocking behavior should run these on a background goroutine per
// agent, matching how the teacher's chat-summary manager offloads its own
// compression step.
func (h *Handle) AddUserMessage(content string) error {
	var err error
	h.withLock(func() {
		h.Window.AddUserMessage(content)
		err = h.Window.CompressIfNeeded()
	})
	return err
}

func (h *Handle) AddAssistantResponse(content string) error {
	var err error
	h.withLock(func() {
		h.Window.AddAssistantResponse(content)
		err = h.Window.CompressIfNeeded()
	})
	return err
}

func (h *Handle) AddToolResults(results []contextwindow.ToolResult) error {
	var err error
	h.withLock(func() {
		h.Window.AddToolResults(results)
		err = h.Window.CompressIfNeeded()
	})
	return err
}

func (h *Handle) AddRetrieved(content string) {
	h.withLock(func() { h.Window.AddRetrieved(content) })
}

// PromptText renders the full system/context prompt for this agent: working
// memory, context window, and the knowledge graph, in the order the
// teacher's prompt assembler concatenates persona/context/memory sections.
func (h *Handle) PromptText() (out string) {
	h.withLock(func() {
		out = h.Memory.ToPromptText(workingmemory.PromptOptions{IncludeIdentity: true}) +
			"\n\n" + h.Window.ToPromptText() +
			"\n\n" + h.Graph.ToPromptText(knowledgegraph.PromptOptions{})
	})
	return out
}

// RunReflection runs a reflection pass unconditionally; MaybeReflect only
// runs one when ShouldReflect(opts) is true. Reflection reads/writes the
// graph and working memory through graphAdapter/wmAdapter and makes an LLM
// call, so it is NOT run under h.mu: the orchestrator's own mutex (and the
// graph/memory's own per-call locks) provide the consistency reflection
// needs without serializing it with unrelated handle operations for the
// whole call duration.
func (h *Handle) RunReflection(ctx context.Context, opts reflection.Options) (reflection.Result, error) {
	start := time.Now()
	result, err := h.Reflection.DeepReflect(ctx, opts)
	elapsed := time.Since(start)
	if err != nil {
		observability.AgentLogger(ctx, h.AgentID).Warn().Err(err).
			Dur("elapsed", elapsed).Msg("reflection_run_failed")
	} else {
		observability.AgentLogger(ctx, h.AgentID).Info().
			Dur("elapsed", elapsed).Int("goals_updated", result.Counts.GoalsUpdated).
			Int("goals_created", result.Counts.GoalsCreated).
			Int("nodes_created", result.Counts.NodesCreated).
			Msg("reflection_run_completed")
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.ReflectionsRun.Add(ctx, 1)
		h.deps.Metrics.ReflectionDuration.Record(ctx, float64(elapsed.Milliseconds()))
	}
	return result, err
}

func (h *Handle) MaybeReflect(ctx context.Context, opts reflection.Options) (reflection.Result, bool, error) {
	if !h.Reflection.ShouldReflect(opts) {
		return reflection.Result{}, false, nil
	}
	result, err := h.RunReflection(ctx, opts)
	return result, true, err
}

// Maintain runs the periodic decay/prune/archive pass spec §4.B describes:
// decay everyone's relevance, prune what falls below threshold, and — when
// an archive store is configured — write each pruned node whose metadata
// carries archive: true there before it is gone for good. Archival failures never block pruning (the node is
// already removed from the live graph by the time Archive is called); they
// are swallowed here the same way the teacher's background janitor logs
// and moves on rather than failing the whole sweep.
func (h *Handle) Maintain(ctx context.Context, now time.Time) []knowledgegraph.Node {
	var pruned []knowledgegraph.Node
	// The periodic ticker is itself the trigger this pass gates on, so it
	// always forces the sweep rather than re-checking capacity; a caller
	// wanting the gated behavior can call h.Graph.DecayAndArchive directly.
	h.withLock(func() { pruned = h.Graph.DecayAndArchive(now, true) })

	observability.AgentLogger(ctx, h.AgentID).Info().Int("pruned_count", len(pruned)).
		Msg("handle_maintain_ran")

	if h.deps.Metrics != nil && len(pruned) > 0 {
		h.deps.Metrics.NodesPruned.Add(ctx, int64(len(pruned)))
	}

	if h.deps.Archive != nil {
		for _, n := range pruned {
			if optedIn, _ := n.Metadata["archive"].(bool); !optedIn {
				continue
			}
			_ = h.deps.Archive.Archive(ctx, h.AgentID, archive.Node{
				ID: n.ID, Type: string(n.Type), Content: n.Content,
				Relevance: n.Relevance, Confidence: n.Confidence, Metadata: n.Metadata,
				PrunedAt: now, LastAccessed: n.LastAccessed,
			})
		}
	}
	return pruned
}
