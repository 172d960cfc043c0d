package proposalqueue

import "github.com/rs/zerolog/log"

// NodeSink is the minimal knowledge-graph surface Accept needs: creating a
// node of a given type from accepted proposal content. internal/agentcore
// wires this to a *knowledgegraph.Graph so this package never imports it
// directly.
type NodeSink interface {
	AddNode(nodeType string, content string, relevance float64, metadata map[string]any) (string, error)
}

const identityTruncateLen = 200 // + "..." = 203 chars, per spec

// routing describes how a proposal type maps onto a knowledge graph node
// type and, for identity/goal/intent proposals, a domain store.
type routing struct {
	nodeType    string
	truncate    bool
	domainStore string // "" when not domain-routed
}

var routingTable = map[Type]routing{
	TypeFact:          {nodeType: "fact"},
	TypeInsight:       {nodeType: "insight"},
	TypeLearning:      {nodeType: "skill"},
	TypePattern:       {nodeType: "experience"},
	TypeThought:       {nodeType: "observation"},
	TypeConcern:       {nodeType: "observation"},
	TypeCuriosity:     {nodeType: "observation"},
	TypeCognitiveMode: {nodeType: "observation"},
	TypePreconscious:  {nodeType: "observation"},
	TypeIdentity:      {nodeType: "trait", truncate: true, domainStore: "self_knowledge"},
	TypeGoal:          {nodeType: "goal", truncate: true, domainStore: "goals"},
	TypeGoalUpdate:    {nodeType: "goal", truncate: true, domainStore: "goals"},
	TypeIntent:        {nodeType: "intention", truncate: true, domainStore: "intents"},
}

// AcceptResult carries the node id created (if any) and the routing that
// was applied, so callers can finish writing to a domain store themselves.
type AcceptResult struct {
	NodeID      string
	DomainStore string
	DomainKey   string
}

// Accept transitions a pending proposal to accepted and routes its content
// into sink per the contractual type→node-type table. A deferred proposal
// must be undeferred first (spec §3 lifecycle: accepted is only reachable
// from pending). Domain-routed acceptances (identity/goal/intent) truncate
// content to <=203 chars and mark the created node reference_only,
// recording domain_store and domain_key in its metadata for the caller to
// follow up on. A sink write failure rolls the proposal back to pending so
// the accept can be retried.
func (q *Queue) Accept(id string, sink NodeSink) (AcceptResult, error) {
	p, err := q.transition(id, []Status{StatusPending}, StatusAccepted)
	if err != nil {
		log.Debug().Str("agent_id", q.AgentID).Str("proposal_id", id).Err(err).
			Msg("proposal_accept_failed")
		return AcceptResult{}, err
	}

	route, ok := routingTable[p.Type]
	if !ok {
		route = routing{nodeType: "observation"}
	}

	content := p.Content
	if route.truncate {
		content = truncateIdentity(content)
	}

	metadata := copyMetadata(p.Metadata)
	var domainKey string
	if route.domainStore != "" {
		metadata["reference_only"] = true
		metadata["domain_store"] = route.domainStore
		domainKey = p.ID
		metadata["domain_key"] = domainKey
	}

	relevance := p.Confidence + 0.2
	if relevance > 1.0 {
		relevance = 1.0
	}

	nodeID, err := sink.AddNode(route.nodeType, content, relevance, metadata)
	if err != nil {
		q.mu.Lock()
		if rolled, ok := q.proposals[id]; ok {
			rolled.Status = StatusPending
			rolled.DecidedAt = nil
		}
		q.mu.Unlock()
		log.Warn().Str("agent_id", q.AgentID).Str("proposal_id", id).Err(err).
			Msg("proposal_accept_sink_write_failed")
		return AcceptResult{}, err
	}

	log.Info().Str("agent_id", q.AgentID).Str("proposal_id", id).Str("proposal_type", string(p.Type)).
		Str("node_id", nodeID).Str("domain_store", route.domainStore).Msg("proposal_accepted")
	return AcceptResult{NodeID: nodeID, DomainStore: route.domainStore, DomainKey: domainKey}, nil
}

func truncateIdentity(content string) string {
	runes := []rune(content)
	if len(runes) <= identityTruncateLen+3 {
		return content
	}
	return string(runes[:identityTruncateLen]) + "..."
}

// AcceptAll accepts every currently pending proposal, best-effort: a single
// failure does not stop the rest.
func (q *Queue) AcceptAll(sink NodeSink) []AcceptResult {
	pending := q.ListPending(ListOptions{})
	results := make([]AcceptResult, 0, len(pending))
	for _, p := range pending {
		if r, err := q.Accept(p.ID, sink); err == nil {
			results = append(results, r)
		}
	}
	return results
}
