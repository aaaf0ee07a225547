// Package harness runs declarative YAML scenarios against a full in-memory
// stack: store, bus, default registry, and all four agents, with
// deterministic ids and local embedding so repeated runs produce identical
// event traces.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/justingibbs/crabgrass/internal/agent"
	"github.com/justingibbs/crabgrass/internal/concept"
	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/registry"
	"github.com/justingibbs/crabgrass/internal/store"
	"github.com/justingibbs/crabgrass/internal/syncs"
	"github.com/justingibbs/crabgrass/internal/testutil"
)

// TraceEvent is one published event in the run's trace. Scores and other
// floats are rounded to two decimals so goldens survive floating point
// noise.
type TraceEvent struct {
	Seq    int            `json:"seq"`
	Event  string         `json:"event"`
	Fields map[string]any `json:"fields"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Trace []TraceEvent

	stack *stack
	refs  map[string]string
}

type stack struct {
	store    *store.Store
	bus      *event.Bus
	queues   *queue.Queues
	set      *concept.Set
	recorder *testutil.EventRecorder
	agents   map[string]agent.Agent
	runner   *agent.Runner
}

func newStack() (*stack, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := testutil.NewSequenceGenerator("id")
	bus := event.NewBus(logger)
	recorder := testutil.NewEventRecorder(bus)
	queues := queue.New(st, queue.WithIDGenerator(gen), queue.WithLogger(logger))
	set := concept.NewSet(st, bus, gen)

	embedder := agent.NewLocalEmbedder()
	index := agent.NewStoreIndex(st)
	detector := agent.KeywordDetector{}

	handlers := syncs.NewHandlers(st, queues, embedder, gen, logger)
	if err := syncs.NewDispatcher(handlers, logger).Wire(registry.Default(), bus); err != nil {
		st.Close()
		return nil, err
	}

	agents := map[string]agent.Agent{}
	for _, a := range []agent.Agent{
		agent.NewConnectionAgent(st, bus, embedder, index, logger),
		agent.NewNurtureAgent(st, queues, embedder, index, detector, logger),
		agent.NewSurfacingAgent(st, set.Notifications, logger),
		agent.NewObjectiveAgent(st, bus, embedder, index, logger),
	} {
		agents[string(a.Queue())] = a
	}

	return &stack{
		store:    st,
		bus:      bus,
		queues:   queues,
		set:      set,
		recorder: recorder,
		agents:   agents,
		runner:   agent.NewRunner(queues, agent.WithBatchSize(100), agent.WithLogger(logger)),
	}, nil
}

// Run executes every step of s against a fresh stack and returns the
// resulting trace. The stack stays open for assertions; Close releases it.
func Run(s *Scenario) (*Result, error) {
	stk, err := newStack()
	if err != nil {
		return nil, err
	}

	r := &Result{stack: stk, refs: map[string]string{}}
	ctx := context.Background()
	for i, step := range s.Steps {
		produced, err := r.runStep(ctx, step)
		if err != nil {
			stk.store.Close()
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		if step.As != "" {
			r.refs[step.As] = produced
		}
	}

	for i, p := range stk.recorder.Events() {
		r.Trace = append(r.Trace, TraceEvent{
			Seq:    i + 1,
			Event:  string(p.EventName()),
			Fields: roundFloats(p.Fields()),
		})
	}
	return r, nil
}

// Close releases the run's store.
func (r *Result) Close() error {
	return r.stack.store.Close()
}

func (r *Result) runStep(ctx context.Context, step Step) (string, error) {
	arg := func(key string) string { return r.resolve(stringArg(step.Args, key)) }

	switch step.Action {
	case "create_user":
		u, err := r.stack.set.Users.Create(ctx, arg("name"), arg("email"), arg("role"))
		if err != nil {
			return "", err
		}
		return u.ID, nil

	case "watch":
		return "", r.stack.set.Users.Watch(ctx, arg("user"), arg("target_type"), arg("target"))

	case "create_idea":
		idea, _, err := r.stack.set.Ideas.Create(ctx, arg("title"), arg("summary"), arg("author"))
		if err != nil {
			return "", err
		}
		return idea.ID, nil

	case "update_idea":
		_, err := r.stack.set.Ideas.Update(ctx, arg("idea"), arg("title"), arg("status"))
		return "", err

	case "archive_idea":
		_, err := r.stack.set.Ideas.Archive(ctx, arg("idea"))
		return "", err

	case "update_summary":
		sum, err := r.stack.store.GetSummaryByIdea(ctx, arg("idea"))
		if err != nil {
			return "", err
		}
		_, err = r.stack.set.Summaries.Update(ctx, sum.ID, arg("content"))
		return "", err

	case "create_challenge":
		ch, err := r.stack.set.Challenges.Create(ctx, arg("idea"), arg("content"))
		if err != nil {
			return "", err
		}
		return ch.ID, nil

	case "create_approach":
		ap, err := r.stack.set.Approaches.Create(ctx, arg("idea"), arg("content"))
		if err != nil {
			return "", err
		}
		return ap.ID, nil

	case "create_action":
		a, err := r.stack.set.Actions.Create(ctx, arg("idea"), arg("content"))
		if err != nil {
			return "", err
		}
		return a.ID, nil

	case "complete_action":
		_, err := r.stack.set.Actions.Complete(ctx, arg("action"))
		return "", err

	case "create_objective":
		o, err := r.stack.set.Objectives.Create(ctx, arg("title"), arg("description"), arg("author"), arg("parent"))
		if err != nil {
			return "", err
		}
		return o.ID, nil

	case "retire_objective":
		_, err := r.stack.set.Objectives.Retire(ctx, arg("objective"))
		return "", err

	case "link":
		return "", r.stack.set.Links.Link(ctx, arg("idea"), arg("objective"))

	case "unlink":
		return "", r.stack.set.Links.Unlink(ctx, arg("idea"), arg("objective"))

	case "start_session":
		sess, err := r.stack.set.Sessions.Start(ctx, arg("user"), arg("idea"))
		if err != nil {
			return "", err
		}
		return sess.ID, nil

	case "end_session":
		_, err := r.stack.set.Sessions.End(ctx, arg("session"))
		return "", err

	case "run_agent":
		a, ok := r.stack.agents[arg("agent")]
		if !ok {
			return "", fmt.Errorf("unknown agent %q", arg("agent"))
		}
		_, failed, err := r.stack.runner.RunOnce(ctx, a)
		if err != nil {
			return "", err
		}
		if failed > 0 {
			return "", fmt.Errorf("agent %q failed %d item(s)", arg("agent"), failed)
		}
		return "", nil

	default:
		return "", fmt.Errorf("unknown action %q", step.Action)
	}
}

// resolve substitutes "$alias" references with captured ids.
func (r *Result) resolve(value string) string {
	if !strings.HasPrefix(value, "$") {
		return value
	}
	id, ok := r.refs[value[1:]]
	if !ok {
		return value
	}
	return id
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func roundFloats(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if f, ok := v.(float64); ok {
			out[k] = math.Round(f*100) / 100
			continue
		}
		out[k] = v
	}
	return out
}
