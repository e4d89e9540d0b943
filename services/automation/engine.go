package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunOptions configures a single engine run.
type RunOptions struct {
	// OnProgress receives every NodeOutput as it is emitted: once with
	// status "running" when a node starts and once finalized. Called
	// synchronously; callbacks must not block.
	OnProgress func(NodeOutput)
	// NodeTimeout bounds each node's execution. Zero disables the bound.
	// A timed-out node is recorded as an error and the run continues.
	NodeTimeout time.Duration
}

// Engine drives a sequenced graph through the executor registry, one node
// at a time, caching payloads for downstream input lookup and emitting
// lifecycle events.
type Engine struct {
	registry Registry
}

// NewEngine creates an Engine with the given executor registry.
func NewEngine(registry Registry) *Engine {
	return &Engine{registry: registry}
}

// Run executes one pass over the graph snapshot. Only a structural
// *GraphError is returned as an error (with state.Status "failed" and zero
// nodes executed); node-level failures are isolated into their NodeOutput
// and the run continues. Cancelling ctx stops the run between nodes with
// status "cancelled", retaining the outputs recorded so far.
func (e *Engine) Run(ctx context.Context, g *Graph, opts RunOptions) (*ExecutionState, error) {
	state := &ExecutionState{
		ExecutionID: uuid.New().String(),
		Status:      RunPending,
		Outputs:     []NodeOutput{},
		StartedAt:   time.Now().UTC(),
	}

	order, err := Sequence(g)
	if err != nil {
		log.Error().Err(err).Str("executionId", state.ExecutionID).Msg("graph rejected by sequencer")
		state.Status = RunFailed
		state.Error = err.Error()
		state.EndedAt = time.Now().UTC()
		return state, err
	}

	nodeByID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeByID[n.ID] = n
	}

	// cache holds each successful node's payload, write-once per node id.
	cache := make(map[string]map[string]any, len(order))
	state.Status = RunRunning

	log.Debug().Str("executionId", state.ExecutionID).Int("nodes", len(order)).Msg("starting run")

	for _, id := range order {
		if ctx.Err() != nil {
			log.Info().Str("executionId", state.ExecutionID).Int("completed", len(state.Outputs)).Msg("run cancelled")
			state.CurrentNodeID = ""
			state.Status = RunCancelled
			state.EndedAt = time.Now().UTC()
			return state, nil
		}

		node := nodeByID[id]
		state.CurrentNodeID = id
		inputs := gatherInputs(g, cache, id)
		started := time.Now()

		output := NodeOutput{
			NodeID:     node.ID,
			NodeName:   node.Label(),
			NodeKind:   node.Kind,
			Timestamp:  started.UTC(),
			Status:     NodeRunning,
			InputCount: len(inputs),
		}
		emit(opts, output)

		result, execErr := e.dispatch(ctx, node, inputs, opts.NodeTimeout)
		output.DurationMs = time.Since(started).Milliseconds()

		if execErr != nil {
			log.Warn().Err(execErr).Str("nodeId", node.ID).Str("kind", node.Kind).Msg("node failed")
			output.Status = NodeError
			output.ErrorMessage = execErr.Error()
		} else {
			cache[node.ID] = result.Payload
			output.Status = NodeSuccess
			output.Payload = result.Payload
			output.DisplayText = result.DisplayText
			log.Debug().Str("nodeId", node.ID).Str("kind", node.Kind).Int64("durationMs", output.DurationMs).Msg("node succeeded")
		}

		state.Outputs = append(state.Outputs, output)
		emit(opts, output)
	}

	state.CurrentNodeID = ""
	state.Status = RunCompleted
	state.EndedAt = time.Now().UTC()
	log.Info().Str("executionId", state.ExecutionID).Int("nodes", len(state.Outputs)).Msg("run completed")
	return state, nil
}

type dispatchOutcome struct {
	result *Result
	err    error
}

// dispatch invokes the registry, bounded by the per-node timeout. A panic
// inside a compute function is captured as that node's error instead of
// taking down the run. When the bound fires the executor's context is
// cancelled so a well-behaved compute function can stop early instead of
// running to completion in the background.
func (e *Engine) dispatch(ctx context.Context, node Node, inputs []map[string]any, timeout time.Duration) (*Result, error) {
	execCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		execCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan dispatchOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- dispatchOutcome{err: fmt.Errorf("node %q panicked: %v", node.ID, r)}
			}
		}()
		result, err := e.registry.Execute(execCtx, node, inputs)
		done <- dispatchOutcome{result: result, err: err}
	}()

	if timeout <= 0 {
		outcome := <-done
		return outcome.result, outcome.err
	}

	select {
	case outcome := <-done:
		return outcome.result, outcome.err
	case <-time.After(timeout):
		cancel()
		return nil, fmt.Errorf("node %q timed out after %dms", node.ID, timeout.Milliseconds())
	}
}

// gatherInputs collects cached payloads of every predecessor of id in
// declaration order. Predecessors without a cached payload (errored or
// timed out) are omitted, not fatal. Payloads are deep-cloned so executors
// never see cache internals, nested collections included.
func gatherInputs(g *Graph, cache map[string]map[string]any, id string) []map[string]any {
	var inputs []map[string]any
	for _, pred := range predecessors(g, id) {
		if payload, ok := cache[pred.ID]; ok {
			inputs = append(inputs, clonePayload(payload))
		}
	}
	return inputs
}

// clonePayload deep-copies a payload over the shapes executors produce:
// nested maps, []any and []map[string]any. Scalar leaves are immutable and
// copied by value.
func clonePayload(payload map[string]any) map[string]any {
	cloned := make(map[string]any, len(payload))
	for k, v := range payload {
		cloned[k] = cloneValue(v)
	}
	return cloned
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return clonePayload(t)
	case []map[string]any:
		items := make([]map[string]any, len(t))
		for i, m := range t {
			items[i] = clonePayload(m)
		}
		return items
	case []any:
		items := make([]any, len(t))
		for i, e := range t {
			items[i] = cloneValue(e)
		}
		return items
	default:
		return v
	}
}

func emit(opts RunOptions, output NodeOutput) {
	if opts.OnProgress != nil {
		opts.OnProgress(output)
	}
}
