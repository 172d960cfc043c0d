package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryBus is a goroutine-safe in-process Bus, used directly by agents
// that don't need durability and as the local pub/sub + interrupt layer
// KafkaBus delegates to for everything Kafka itself doesn't persist.
type InMemoryBus struct {
	mu sync.Mutex

	log         map[string][]Signal // agent_id -> signals in publish order
	subscribers map[string]Handler
	interrupts  map[string]Interruption
	waiters     map[string][]chan Signal // agent_id:correlation_id -> waiting ExecuteAndWait calls
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		log:         make(map[string][]Signal),
		subscribers: make(map[string]Handler),
		interrupts:  make(map[string]Interruption),
		waiters:     make(map[string][]chan Signal),
	}
}

func (b *InMemoryBus) Publish(ctx context.Context, sig Signal) error {
	if sig.Timestamp.IsZero() {
		sig.Timestamp = time.Now().UTC()
	}

	b.mu.Lock()
	b.log[sig.AgentID] = append(b.log[sig.AgentID], sig)
	handlers := make([]Handler, 0, len(b.subscribers))
	for _, h := range b.subscribers {
		handlers = append(handlers, h)
	}
	var notify []chan Signal
	if sig.Type == "percept" && sig.CorrelationID != "" {
		key := sig.AgentID + ":" + sig.CorrelationID
		notify = b.waiters[key]
		delete(b.waiters, key)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(sig)
	}
	for _, ch := range notify {
		select {
		case ch <- sig:
		default:
		}
	}
	return nil
}

func (b *InMemoryBus) Subscribe(handler Handler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("eventbus: nil handler")
	}
	id := uuid.NewString()
	b.mu.Lock()
	b.subscribers[id] = handler
	b.mu.Unlock()
	return id, nil
}

func (b *InMemoryBus) Unsubscribe(subID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, subID)
	return nil
}

func (b *InMemoryBus) recentByType(agentID, sigType string, limit int) []Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	all := b.log[agentID]
	out := make([]Signal, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].Type == sigType {
			out = append(out, all[i])
		}
	}
	return out
}

func (b *InMemoryBus) RecentIntents(agentID string, limit int) []Signal {
	if limit <= 0 {
		limit = 20
	}
	return b.recentByType(agentID, "intent", limit)
}

func (b *InMemoryBus) RecentPercepts(agentID string, limit int) []Signal {
	if limit <= 0 {
		limit = 20
	}
	return b.recentByType(agentID, "percept", limit)
}

func (b *InMemoryBus) Interrupt(target, agentID, reason string, opts InterruptOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interrupts[target] = Interruption{
		Reason:              reason,
		AgentID:             agentID,
		TargetID:            target,
		InterruptedAt:       time.Now().UTC().UnixMilli(),
		ReplacementIntentID: opts.ReplacementIntentID,
		AllowResume:         opts.AllowResume,
	}
	return nil
}

func (b *InMemoryBus) Interrupted(target string) (Interruption, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.interrupts[target]
	return i, ok
}

func (b *InMemoryBus) ClearInterrupt(target string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.interrupts, target)
	return nil
}

// ExecuteAndWait publishes intent, then blocks for the first percept
// carrying the same correlation id (a freshly generated uuid, set on intent,
// if no correlation id was set), up to timeout.
func (b *InMemoryBus) ExecuteAndWait(ctx context.Context, agentID string, intent Signal, timeout time.Duration) (Signal, error) {
	corr := intent.CorrelationID
	if corr == "" {
		corr = uuid.NewString()
		intent.CorrelationID = corr
	}
	intent.AgentID = agentID
	intent.Type = "intent"

	ch := make(chan Signal, 1)
	key := agentID + ":" + corr
	b.mu.Lock()
	b.waiters[key] = append(b.waiters[key], ch)
	b.mu.Unlock()

	if err := b.Publish(ctx, intent); err != nil {
		return Signal{}, err
	}

	select {
	case sig := <-ch:
		return sig, nil
	case <-time.After(timeout):
		return Signal{}, fmt.Errorf("eventbus: timeout waiting for percept")
	case <-ctx.Done():
		return Signal{}, ctx.Err()
	}
}

func (b *InMemoryBus) Replay(ctx context.Context, agentID string) ([]Signal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	all, ok := b.log[agentID]
	if !ok {
		return nil, true // empty but replayable
	}
	out := make([]Signal, len(all))
	copy(out, all)
	return out, true
}

func (b *InMemoryBus) SignalCount(agentID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.log[agentID])
}
