package proposalqueue

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CreateSpec is the input to Create.
type CreateSpec struct {
	Type       Type
	Content    string
	Confidence float64
	Metadata   map[string]any
}

// Create validates type and content, then inserts a pending proposal.
// Exact (type, content) duplicates return the existing proposal's id
// instead of creating a second one; a different type never dedups against
// another type even with identical content.
func (q *Queue) Create(spec CreateSpec) (string, error) {
	if !validTypes[spec.Type] {
		return "", &InvalidTypeError{Type: spec.Type}
	}
	if spec.Content == "" {
		return "", &EmptyContentError{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := dedupKey(spec.Type, spec.Content)
	for _, id := range q.order {
		p := q.proposals[id]
		if dedupKey(p.Type, p.Content) == key {
			return p.ID, nil
		}
	}

	p := &Proposal{
		ID:         newProposalID(),
		AgentID:    q.AgentID,
		Type:       spec.Type,
		Content:    spec.Content,
		Confidence: spec.Confidence,
		Metadata:   copyMetadata(spec.Metadata),
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	q.proposals[p.ID] = p
	q.order = append(q.order, p.ID)
	return p.ID, nil
}

// ListOptions filters/sorts ListPending.
type ListOptions struct {
	Type         Type // empty = any
	Limit        int  // 0 = no limit
	ByConfidence bool // false = sort by created_at desc (default)
}

// ListPending returns pending proposals, optionally filtered by type and
// sorted by created_at (desc, default) or confidence (desc).
func (q *Queue) ListPending(opts ListOptions) []Proposal {
	q.mu.Lock()
	defer q.mu.Unlock()

	var items []*Proposal
	for _, id := range q.order {
		p := q.proposals[id]
		if p.Status != StatusPending {
			continue
		}
		if opts.Type != "" && p.Type != opts.Type {
			continue
		}
		items = append(items, p)
	}
	sortByField(items, opts.ByConfidence)
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	out := make([]Proposal, 0, len(items))
	for _, p := range items {
		out = append(out, *p)
	}
	return out
}

// Get returns a copy of a single proposal.
func (q *Queue) Get(id string) (Proposal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.proposals[id]
	if !ok {
		return Proposal{}, &NotFoundError{ID: id}
	}
	return *p, nil
}

func (q *Queue) transition(id string, from []Status, to Status) (*Proposal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.proposals[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	allowed := false
	for _, s := range from {
		if p.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &StatusError{Current: p.Status, Expected: from}
	}
	p.Status = to
	now := time.Now().UTC()
	p.DecidedAt = &now
	return p, nil
}

// Reject transitions a pending proposal to rejected. Like Accept, a
// deferred proposal must be undeferred first.
func (q *Queue) Reject(id string) error {
	_, err := q.transition(id, []Status{StatusPending}, StatusRejected)
	if err != nil {
		log.Debug().Str("agent_id", q.AgentID).Str("proposal_id", id).Err(err).
			Msg("proposal_reject_failed")
		return err
	}
	log.Info().Str("agent_id", q.AgentID).Str("proposal_id", id).Msg("proposal_rejected")
	return nil
}

// Defer transitions a pending proposal to deferred.
func (q *Queue) Defer(id string) error {
	_, err := q.transition(id, []Status{StatusPending}, StatusDeferred)
	if err != nil {
		log.Debug().Str("agent_id", q.AgentID).Str("proposal_id", id).Err(err).
			Msg("proposal_defer_failed")
		return err
	}
	log.Info().Str("agent_id", q.AgentID).Str("proposal_id", id).Msg("proposal_deferred")
	return nil
}

// Undefer transitions a deferred proposal back to pending.
func (q *Queue) Undefer(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.proposals[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	if p.Status != StatusDeferred {
		return &StatusError{Current: p.Status, Expected: []Status{StatusDeferred}}
	}
	p.Status = StatusPending
	p.DecidedAt = nil
	return nil
}

// CountPending returns the number of proposals currently pending.
func (q *Queue) CountPending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, p := range q.proposals {
		if p.Status == StatusPending {
			n++
		}
	}
	return n
}

// Stats summarizes the queue by status.
type Stats struct {
	Pending  int
	Accepted int
	Rejected int
	Deferred int
	Total    int
}

// Stats returns counts by status.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	var s Stats
	for _, p := range q.proposals {
		s.Total++
		switch p.Status {
		case StatusPending:
			s.Pending++
		case StatusAccepted:
			s.Accepted++
		case StatusRejected:
			s.Rejected++
		case StatusDeferred:
			s.Deferred++
		}
	}
	return s
}

// DeleteAll clears the queue entirely.
func (q *Queue) DeleteAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.proposals = make(map[string]*Proposal)
	q.order = nil
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
