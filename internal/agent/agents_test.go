package agent_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justingibbs/crabgrass/internal/agent"
	"github.com/justingibbs/crabgrass/internal/concept"
	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/store"
	"github.com/justingibbs/crabgrass/internal/testutil"
)

type fixture struct {
	store    *store.Store
	bus      *event.Bus
	queues   *queue.Queues
	set      *concept.Set
	recorder *testutil.EventRecorder
	embedder *testutil.FakeEmbedder
	index    *testutil.ScriptedIndex
}

// newFixture builds a stack with no handlers wired: concept actions publish
// events nobody reacts to, so tests control queue contents explicitly.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	gen := testutil.NewSequenceGenerator("id")
	bus := event.NewBus(nil)
	return &fixture{
		store:    s,
		bus:      bus,
		queues:   queue.New(s, queue.WithIDGenerator(gen)),
		set:      concept.NewSet(s, bus, gen),
		recorder: testutil.NewEventRecorder(bus),
		embedder: testutil.NewFakeEmbedder(),
		index:    testutil.NewScriptedIndex(),
	}
}

func (f *fixture) enqueue(t *testing.T, name queue.Name, payload map[string]any) {
	t.Helper()
	_, err := f.queues.Enqueue(context.Background(), name, payload)
	require.NoError(t, err)
}

func (f *fixture) runOnce(t *testing.T, a agent.Agent) (int, int) {
	t.Helper()
	processed, failed, err := agent.NewRunner(f.queues, agent.WithLogger(testLogger())).RunOnce(context.Background(), a)
	require.NoError(t, err)
	return processed, failed
}

func (f *fixture) surfacingPayloads(t *testing.T) []map[string]any {
	t.Helper()
	items, err := f.queues.Dequeue(context.Background(), queue.Surfacing, 100)
	require.NoError(t, err)
	payloads := make([]map[string]any, len(items))
	for i, item := range items {
		payloads[i] = item.Payload
	}
	return payloads
}

func TestConnectionAgentPublishesPerMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ideaA, _, err := f.set.Ideas.Create(ctx, "Idea A", "summary a", "u-1")
	require.NoError(t, err)
	ideaB, _, err := f.set.Ideas.Create(ctx, "Idea B", "summary b", "u-2")
	require.NoError(t, err)
	chA, err := f.set.Challenges.Create(ctx, ideaA.ID, "churn before activation")
	require.NoError(t, err)
	f.recorder.Reset()

	f.index.Script(agent.KindChallenge, chA.ID,
		agent.Match{ID: "c-other", IdeaID: ideaB.ID, Score: 0.82},
		agent.Match{ID: "c-self", IdeaID: ideaA.ID, Score: 0.99}, // same idea: skipped
	)

	f.enqueue(t, queue.Connection, map[string]any{"kind": "challenge", "id": chA.ID, "idea_id": ideaA.ID})
	a := agent.NewConnectionAgent(f.store, f.bus, f.embedder, f.index, testLogger())
	processed, failed := f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 0, failed)

	require.Equal(t, []event.Name{event.AgentFoundSimilarity}, f.recorder.Names())
	p := f.recorder.Events()[0].(event.AgentFoundSimilarityPayload)
	assert.Equal(t, "challenge", p.FromType)
	assert.Equal(t, chA.ID, p.FromID)
	assert.Equal(t, "c-other", p.ToID)
	assert.Equal(t, ideaA.ID, p.IdeaID)
	assert.Equal(t, ideaB.ID, p.OtherIdeaID)
	assert.InDelta(t, 0.82, p.Score, 1e-9)
}

func TestConnectionAgentEmbedsWhenVectorMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idea, summary, err := f.set.Ideas.Create(ctx, "Idea", "fresh summary", "u-1")
	require.NoError(t, err)
	f.recorder.Reset()

	// No generate handler ran, so the summary has no stored vector yet.
	f.enqueue(t, queue.Connection, map[string]any{"kind": "summary", "id": summary.ID, "idea_id": idea.ID})
	a := agent.NewConnectionAgent(f.store, f.bus, f.embedder, f.index, testLogger())
	processed, _ := f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"fresh summary"}, f.embedder.Calls())
	assert.Empty(t, f.recorder.Names())
}

func TestConnectionAgentFailsOnMissingRecord(t *testing.T) {
	f := newFixture(t)

	f.enqueue(t, queue.Connection, map[string]any{"kind": "summary", "id": "s-missing", "idea_id": "i-1"})
	a := agent.NewConnectionAgent(f.store, f.bus, f.embedder, f.index, testLogger())
	processed, failed := f.runOnce(t, a)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, failed)

	// The failed item went back to pending for retry.
	counts, err := f.queues.Counts(context.Background(), queue.Connection)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[store.QueueStatusPending])
}

func TestNurtureAgentSkipsStructuredAndArchived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	structured, _, err := f.set.Ideas.Create(ctx, "Structured", "summary", "u-1")
	require.NoError(t, err)
	_, err = f.set.Challenges.Create(ctx, structured.ID, "a challenge")
	require.NoError(t, err)

	archived, _, err := f.set.Ideas.Create(ctx, "Archived", "summary", "u-1")
	require.NoError(t, err)
	_, err = f.set.Ideas.Archive(ctx, archived.ID)
	require.NoError(t, err)

	f.enqueue(t, queue.Nurture, map[string]any{"idea_id": structured.ID})
	f.enqueue(t, queue.Nurture, map[string]any{"idea_id": archived.ID})
	f.enqueue(t, queue.Nurture, map[string]any{"idea_id": "i-gone"})

	a := agent.NewNurtureAgent(f.store, f.queues, f.embedder, f.index, testutil.StaticDetector{Hint: "a hint"}, testLogger())
	processed, failed := f.runOnce(t, a)
	assert.Equal(t, 3, processed)
	assert.Equal(t, 0, failed)
	assert.Empty(t, f.surfacingPayloads(t))
}

func TestNurtureAgentSkipsActivelyLinkedIdeas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idea, _, err := f.set.Ideas.Create(ctx, "Linked", "summary", "u-1")
	require.NoError(t, err)
	o, err := f.set.Objectives.Create(ctx, "Objective", "desc", "u-1", "")
	require.NoError(t, err)
	require.NoError(t, f.set.Links.Link(ctx, idea.ID, o.ID))

	f.enqueue(t, queue.Nurture, map[string]any{"idea_id": idea.ID})
	a := agent.NewNurtureAgent(f.store, f.queues, f.embedder, f.index, testutil.StaticDetector{Hint: "a hint"}, testLogger())
	processed, failed := f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 0, failed)
	assert.Empty(t, f.surfacingPayloads(t), "linked ideas get no nurture prompts")
}

func TestNurtureAgentRunsAllThreeChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idea, summary, err := f.set.Ideas.Create(ctx, "Unstructured", "raw thought", "u-1")
	require.NoError(t, err)

	other, _, err := f.set.Ideas.Create(ctx, "Neighbour", "nearby thought", "u-2")
	require.NoError(t, err)
	_, err = f.set.Challenges.Create(ctx, other.ID, "a challenge")
	require.NoError(t, err)

	f.index.Script(agent.KindSummary, summary.ID, agent.Match{ID: "s-other", IdeaID: other.ID, Score: 0.71})
	f.index.Script(agent.KindObjective, "", agent.Match{ID: "o-1", IdeaID: "o-1", Score: 0.73})

	f.enqueue(t, queue.Nurture, map[string]any{"idea_id": idea.ID})
	a := agent.NewNurtureAgent(f.store, f.queues, f.embedder, f.index, testutil.StaticDetector{Hint: "churn risk"}, testLogger())
	processed, _ := f.runOnce(t, a)
	assert.Equal(t, 1, processed)

	payloads := f.surfacingPayloads(t)
	require.Len(t, payloads, 3)
	types := make([]string, len(payloads))
	for i, p := range payloads {
		types[i] = p["type"].(string)
		assert.Equal(t, idea.ID, p["idea_id"])
	}
	assert.Equal(t, []string{
		agent.SurfacingNurtureChallengeHint,
		agent.SurfacingNurtureSimilarFound,
		agent.SurfacingNurtureObjectiveSuggestion,
	}, types)
	assert.Equal(t, "churn risk", payloads[0]["hint"])
	assert.Equal(t, other.ID, payloads[1]["similar_idea_id"])
	assert.Equal(t, "o-1", payloads[2]["objective_id"])
}

func TestNurtureAgentSilentWhenNothingFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idea, _, err := f.set.Ideas.Create(ctx, "Quiet", "nothing special", "u-1")
	require.NoError(t, err)

	f.enqueue(t, queue.Nurture, map[string]any{"idea_id": idea.ID})
	a := agent.NewNurtureAgent(f.store, f.queues, f.embedder, f.index, testutil.StaticDetector{}, testLogger())
	processed, _ := f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	assert.Empty(t, f.surfacingPayloads(t))
}

func TestObjectiveAgentVerdicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author, err := f.set.Users.Create(ctx, "Ada", "ada@example.com", store.RoleFrontline)
	require.NoError(t, err)
	idea, _, err := f.set.Ideas.Create(ctx, "Stranded", "summary", author.ID)
	require.NoError(t, err)
	f.recorder.Reset()

	a := agent.NewObjectiveAgent(f.store, f.bus, f.embedder, f.index, testLogger())

	// No active objective scores high enough: orphan.
	f.enqueue(t, queue.ObjectiveReview, map[string]any{"idea_id": idea.ID, "retired_objective_id": "o-old"})
	processed, _ := f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	require.Equal(t, []event.Name{event.AgentFlagOrphan}, f.recorder.Names())

	// A match above threshold: reconnection, and only reconnection.
	f.recorder.Reset()
	f.index.Script(agent.KindObjective, "o-old", agent.Match{ID: "o-new", IdeaID: "o-new", Score: 0.74})
	f.enqueue(t, queue.ObjectiveReview, map[string]any{"idea_id": idea.ID, "retired_objective_id": "o-old"})
	processed, _ = f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	require.Equal(t, []event.Name{event.AgentSuggestReconnection}, f.recorder.Names())
	p := f.recorder.Events()[0].(event.AgentSuggestReconnectionPayload)
	assert.Equal(t, "o-new", p.ObjectiveID)
	assert.InDelta(t, 0.74, p.Score, 1e-9)
	assert.Contains(t, p.Reason, `"o-new"`)
	assert.Contains(t, p.Reason, "0.74")
}

func TestObjectiveAgentSkipsActivelyLinkedIdeas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idea, _, err := f.set.Ideas.Create(ctx, "Still linked", "summary", "u-1")
	require.NoError(t, err)
	o, err := f.set.Objectives.Create(ctx, "Objective", "desc", "u-1", "")
	require.NoError(t, err)
	require.NoError(t, f.set.Links.Link(ctx, idea.ID, o.ID))
	f.recorder.Reset()

	f.enqueue(t, queue.ObjectiveReview, map[string]any{"idea_id": idea.ID, "retired_objective_id": "o-old"})
	a := agent.NewObjectiveAgent(f.store, f.bus, f.embedder, f.index, testLogger())
	processed, _ := f.runOnce(t, a)
	assert.Equal(t, 1, processed)
	assert.Empty(t, f.recorder.Names(), "linked ideas get no verdict")
}

type stubAgent struct {
	queue queue.Name
	fn    func(*queue.Item) error
}

func (s stubAgent) Name() string      { return "stub" }
func (s stubAgent) Queue() queue.Name { return s.queue }
func (s stubAgent) Process(ctx context.Context, item *queue.Item) error {
	return s.fn(item)
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	f := newFixture(t)

	f.enqueue(t, queue.Connection, map[string]any{"n": "ok-1"})
	f.enqueue(t, queue.Connection, map[string]any{"n": "bad"})
	f.enqueue(t, queue.Connection, map[string]any{"n": "ok-2"})

	a := stubAgent{queue: queue.Connection, fn: func(item *queue.Item) error {
		if item.Payload["n"] == "bad" {
			return errors.New("boom")
		}
		return nil
	}}
	processed, failed := f.runOnce(t, a)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, failed)

	counts, err := f.queues.Counts(context.Background(), queue.Connection)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[store.QueueStatusCompleted])
	assert.Equal(t, 1, counts[store.QueueStatusPending], "failed item re-pended for retry")
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := stubAgent{queue: queue.Connection, fn: func(*queue.Item) error { return nil }}
	err := agent.NewRunner(f.queues, agent.WithLogger(testLogger())).RunLoop(ctx, a)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestratorShutsDownCleanly(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := agent.NewRunner(f.queues, agent.WithLogger(testLogger()))
	o := agent.NewOrchestrator(runner, nil, testLogger(),
		stubAgent{queue: queue.Connection, fn: func(*queue.Item) error { return nil }},
		stubAgent{queue: queue.Nurture, fn: func(*queue.Item) error { return nil }},
	)
	assert.NoError(t, o.Run(ctx))
}
