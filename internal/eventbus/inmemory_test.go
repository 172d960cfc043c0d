package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestInterruptFlowRoundTrip(t *testing.T) {
	bus := NewInMemoryBus()

	err := bus.Interrupt("task-7", "agent-A", "higher_priority", InterruptOptions{
		ReplacementIntentID: "i99",
		AllowResume:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	i, ok := bus.Interrupted("task-7")
	if !ok {
		t.Fatalf("expected interrupt recorded for target")
	}
	if i.Reason != "higher_priority" || i.AgentID != "agent-A" || i.TargetID != "task-7" {
		t.Fatalf("unexpected interruption fields: %+v", i)
	}
	if i.ReplacementIntentID != "i99" || !i.AllowResume {
		t.Fatalf("expected replacement intent and allow_resume carried, got %+v", i)
	}
	if i.InterruptedAt == 0 {
		t.Fatalf("expected interrupted_at stamped")
	}

	if err := bus.ClearInterrupt("task-7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := bus.Interrupted("task-7"); ok {
		t.Fatalf("expected interrupt cleared")
	}
}

func TestPublishReplayPreservesOrderPerAgent(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	for _, sigType := range []string{"thought_recorded", "goal", "engagement_changed"} {
		if err := bus.Publish(ctx, Signal{Type: sigType, AgentID: "agent-A"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := bus.Publish(ctx, Signal{Type: "identity_change", AgentID: "agent-B"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sigs, ok := bus.Replay(ctx, "agent-A")
	if !ok {
		t.Fatalf("expected in-memory bus to be replayable")
	}
	if len(sigs) != 3 {
		t.Fatalf("expected 3 signals for agent-A, got %d", len(sigs))
	}
	want := []string{"thought_recorded", "goal", "engagement_changed"}
	for i, sig := range sigs {
		if sig.Type != want[i] {
			t.Fatalf("expected publish order preserved: index %d got %q want %q", i, sig.Type, want[i])
		}
	}
	if bus.SignalCount("agent-A") != 3 || bus.SignalCount("agent-B") != 1 {
		t.Fatalf("unexpected signal counts: A=%d B=%d", bus.SignalCount("agent-A"), bus.SignalCount("agent-B"))
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	var received []string
	subID, err := bus.Subscribe(func(sig Signal) { received = append(received, sig.Type) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = bus.Publish(ctx, Signal{Type: "thought_recorded", AgentID: "agent-A"})
	if len(received) != 1 {
		t.Fatalf("expected handler invoked once, got %d", len(received))
	}

	if err := bus.Unsubscribe(subID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = bus.Publish(ctx, Signal{Type: "goal", AgentID: "agent-A"})
	if len(received) != 1 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", len(received))
	}
}

func TestExecuteAndWaitCorrelatesPercept(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	// A subscriber plays the role of the external executor: it sees the
	// intent and publishes the matching percept.
	_, err := bus.Subscribe(func(sig Signal) {
		if sig.Type != "intent" {
			return
		}
		go func() {
			_ = bus.Publish(ctx, Signal{
				Type:          "percept",
				AgentID:       sig.AgentID,
				CorrelationID: sig.CorrelationID,
				Data:          map[string]any{"outcome": "done"},
			})
		}()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	percept, err := bus.ExecuteAndWait(ctx, "agent-A", Signal{Data: map[string]any{"action": "fetch"}}, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if percept.Type != "percept" || percept.Data["outcome"] != "done" {
		t.Fatalf("unexpected percept: %+v", percept)
	}
}

func TestExecuteAndWaitTimesOutWithoutPercept(t *testing.T) {
	bus := NewInMemoryBus()
	_, err := bus.ExecuteAndWait(context.Background(), "agent-A", Signal{}, 50*time.Millisecond)
	if err == nil {
		t.Fatalf("expected timeout error when no percept arrives")
	}
}

func TestRecentIntentsAndPerceptsFilterByType(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	_ = bus.Publish(ctx, Signal{Type: "intent", AgentID: "agent-A", CorrelationID: "c1"})
	_ = bus.Publish(ctx, Signal{Type: "thought_recorded", AgentID: "agent-A"})
	_ = bus.Publish(ctx, Signal{Type: "percept", AgentID: "agent-A", CorrelationID: "c1"})

	if got := bus.RecentIntents("agent-A", 10); len(got) != 1 || got[0].Type != "intent" {
		t.Fatalf("unexpected recent intents: %+v", got)
	}
	if got := bus.RecentPercepts("agent-A", 10); len(got) != 1 || got[0].Type != "percept" {
		t.Fatalf("unexpected recent percepts: %+v", got)
	}
}
