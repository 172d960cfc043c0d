package agentcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cogmem/internal/eventbus"
	"cogmem/internal/knowledgegraph"
	"cogmem/internal/reflection"
	"cogmem/internal/workingmemory"
)

func TestGraphAdapterSatisfiesReflectionAndNodeSinkShapes(t *testing.T) {
	t.Parallel()

	g := knowledgegraph.New("agent-1", knowledgegraph.Config{})
	a := graphAdapter{g}

	id, err := a.AddNode("fact", "paris is the capital of france", 0.6, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	node, ok := a.FindByName("paris is the capital of france")
	require.True(t, ok)
	require.Equal(t, id, node.ID)

	id2, err := a.AddNode("fact", "the louvre is in paris", 0.5, nil)
	require.NoError(t, err)
	require.NoError(t, a.AddEdge(id, id2, "related_to", 0.9))
	require.Contains(t, a.ToPromptText(), "paris")
}

func TestWMAdapterGoalRoundTripPreservesDeadline(t *testing.T) {
	t.Parallel()

	m := workingmemory.New("agent-1", workingmemory.Config{})
	a := wmAdapter{m}

	deadline := time.Now().UTC().Add(24 * time.Hour).UnixMilli()
	id := a.AddGoal(reflection.WMGoal{Description: "ship the feature", Deadline: &deadline})
	require.NotEmpty(t, id)

	goals := a.Goals()
	require.Len(t, goals, 1)
	require.NotNil(t, goals[0].Deadline)
	require.InDelta(t, deadline, *goals[0].Deadline, float64(time.Second.Milliseconds()))
}

func TestWMAdapterSelfKnowledgeSummaryReflectsStats(t *testing.T) {
	t.Parallel()

	m := workingmemory.New("agent-1", workingmemory.Config{})
	m.AddCuriosity("how transformers work")
	m.AddConcern("context budget running low")
	a := wmAdapter{m}

	summary := a.SelfKnowledgeSummary()
	require.Contains(t, summary, "curious about: how transformers work")
	require.Contains(t, summary, "concerned about: context budget running low")
}

func TestSignalSourceAdapterConvertsBusSignals(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewInMemoryBus()
	require.NoError(t, bus.Publish(context.Background(), eventbus.Signal{
		Type: "goal_created", AgentID: "agent-1", Timestamp: time.Now().UTC(), Data: map[string]any{"id": "g1"},
	}))

	a := signalSourceAdapter{bus: bus}
	sigs, err := a.ReplaySignals("agent-1")
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	require.Equal(t, "goal_created", sigs[0].Type)
}
