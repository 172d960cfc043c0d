// Package proposalqueue implements the typed, deduped proposal queue that
// sits between background analysers and the knowledge graph / domain
// stores: analysers propose, a human or policy accepts/rejects/defers, and
// acceptance routes the content into the right destination.
package proposalqueue

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type is the closed set of proposal kinds spec §4.E names.
type Type string

const (
	TypeFact           Type = "fact"
	TypeInsight        Type = "insight"
	TypeLearning       Type = "learning"
	TypePattern        Type = "pattern"
	TypeThought        Type = "thought"
	TypeConcern        Type = "concern"
	TypeCuriosity      Type = "curiosity"
	TypeCognitiveMode  Type = "cognitive_mode"
	TypePreconscious   Type = "preconscious"
	TypeIdentity       Type = "identity"
	TypeGoal           Type = "goal"
	TypeGoalUpdate     Type = "goal_update"
	TypeIntent         Type = "intent"
)

var validTypes = map[Type]bool{
	TypeFact: true, TypeInsight: true, TypeLearning: true, TypePattern: true,
	TypeThought: true, TypeConcern: true, TypeCuriosity: true,
	TypeCognitiveMode: true, TypePreconscious: true, TypeIdentity: true,
	TypeGoal: true, TypeGoalUpdate: true, TypeIntent: true,
}

// Status is a proposal's lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusDeferred Status = "deferred"
)

// Proposal is a single queued item awaiting a decision.
type Proposal struct {
	ID         string
	AgentID    string
	Type       Type
	Content    string
	Confidence float64
	Metadata   map[string]any
	Status     Status
	CreatedAt  time.Time
	DecidedAt  *time.Time
}

// StatusError reports an invalid status transition.
type StatusError struct {
	Current  Status
	Expected []Status
}

func (e *StatusError) Error() string {
	return "proposalqueue: invalid_status current=" + string(e.Current)
}

// NotFoundError is returned when a proposal id is not in the queue.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string { return "proposalqueue: not_found " + e.ID }

// InvalidTypeError is returned when Create is given an unrecognised Type.
type InvalidTypeError struct{ Type Type }

func (e *InvalidTypeError) Error() string { return "proposalqueue: invalid_type " + string(e.Type) }

// EmptyContentError is returned when Create is given empty content.
type EmptyContentError struct{}

func (e *EmptyContentError) Error() string { return "proposalqueue: content must not be empty" }

// Queue is a per-agent proposal queue. Safe for concurrent use.
type Queue struct {
	mu sync.Mutex

	AgentID    string
	proposals  map[string]*Proposal
	order      []string // insertion order, for stable iteration
}

// New creates an empty queue for agentID.
func New(agentID string) *Queue {
	return &Queue{
		AgentID:   agentID,
		proposals: make(map[string]*Proposal),
	}
}

func newProposalID() string {
	return "prop_" + uuid.NewString()
}

func dedupKey(t Type, content string) string {
	return string(t) + "\x00" + strings.ToLower(strings.TrimSpace(content))
}

func sortByField(items []*Proposal, byConfidence bool) {
	sort.Slice(items, func(i, j int) bool {
		if byConfidence {
			if items[i].Confidence != items[j].Confidence {
				return items[i].Confidence > items[j].Confidence
			}
			return items[i].ID < items[j].ID
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
