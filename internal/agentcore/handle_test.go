package agentcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cogmem/internal/knowledgegraph"
	"cogmem/internal/proposalqueue"
	"cogmem/internal/workingmemory"
)

func TestRegistryInitForAgentIsIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Deps{})
	h1 := r.InitForAgent("agent-1", HandleConfig{})
	h2 := r.InitForAgent("agent-1", HandleConfig{})
	require.Same(t, h1, h2)

	got, ok := r.Get("agent-1")
	require.True(t, ok)
	require.Same(t, h1, got)
}

func TestRegistryInitForAgentConcurrentRaceYieldsOneHandle(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Deps{})
	const n = 32
	handles := make([]*Handle, n)
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			handles[i] = r.InitForAgent("agent-race", HandleConfig{})
			done <- i
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}
	for i := 1; i < n; i++ {
		require.Same(t, handles[0], handles[i])
	}
}

func TestRegistryCleanupForAgentDropsHandle(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Deps{})
	r.InitForAgent("agent-1", HandleConfig{})
	r.CleanupForAgent("agent-1")
	_, ok := r.Get("agent-1")
	require.False(t, ok)
}

func TestHandleAddFactAndRecall(t *testing.T) {
	t.Parallel()

	h := NewRegistry(Deps{}).InitForAgent("agent-1", HandleConfig{})
	id, err := h.AddFact("the sky is blue", 0.6, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	found := h.Recall("sky", knowledgegraph.RecallOptions{})
	require.Len(t, found, 1)
	require.Equal(t, id, found[0].ID)
}

func TestHandleProposeAndAcceptRoutesIntoGraph(t *testing.T) {
	t.Parallel()

	h := NewRegistry(Deps{}).InitForAgent("agent-1", HandleConfig{})
	id, err := h.Propose(proposalqueue.CreateSpec{Type: proposalqueue.TypeFact, Content: "water boils at 100C", Confidence: 0.8})
	require.NoError(t, err)

	result, err := h.AcceptProposal(id)
	require.NoError(t, err)
	require.NotEmpty(t, result.NodeID)

	node, err := h.Graph.GetNode(result.NodeID)
	require.NoError(t, err)
	require.Equal(t, "water boils at 100C", node.Content)
}

func TestHandleGoalLifecycle(t *testing.T) {
	t.Parallel()

	h := NewRegistry(Deps{}).InitForAgent("agent-1", HandleConfig{})
	id := h.AddGoal(workingmemory.Goal{Description: "learn go", Priority: "high"})
	require.NotEmpty(t, id)

	h.UpdateGoalProgress(id, 50)
	h.CompleteGoal(id)

	goals := h.Memory.Goals()
	require.Len(t, goals, 1)
	require.Equal(t, workingmemory.GoalAchieved, goals[0].Status)
}

func TestHandleMaintainPrunesLowRelevanceNodes(t *testing.T) {
	t.Parallel()

	h := NewRegistry(Deps{}).InitForAgent("agent-1", HandleConfig{})
	id, err := h.AddFact("fading fact", 0.05, nil)
	require.NoError(t, err)

	pruned := h.Maintain(context.Background(), time.Now().UTC())
	found := false
	for _, n := range pruned {
		if n.ID == id {
			found = true
		}
	}
	require.True(t, found)
}
