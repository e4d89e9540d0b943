package automation

import "time"

// Graph is a user-authored automation: an ordered list of configured nodes.
// Edges are carried on the nodes themselves as outgoing connection lists;
// there is no separate edge entity.
type Graph struct {
	Name  string `json:"name,omitempty"`
	Nodes []Node `json:"nodes" validate:"required,min=1,dive"`
}

// Node is a single configured unit of work, tagged with a kind that selects
// its executor.
type Node struct {
	ID          string         `json:"id" validate:"required"`
	Kind        string         `json:"kind" validate:"required"`
	Name        string         `json:"name"`
	Config      map[string]any `json:"config,omitempty"`
	Connections []string       `json:"connections,omitempty"`
}

// Label returns the node's display name, falling back to its id.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// RunStatus is the lifecycle status of a whole execution.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// NodeStatus is the per-node lifecycle status within a run.
type NodeStatus string

const (
	NodeRunning NodeStatus = "running"
	NodeSuccess NodeStatus = "success"
	NodeError   NodeStatus = "error"
)

// NodeOutput is the execution record of a single node: emitted once with
// status "running" when the node starts, then finalized and appended to the
// run's trace.
type NodeOutput struct {
	NodeID       string         `json:"nodeId"`
	NodeName     string         `json:"nodeName"`
	NodeKind     string         `json:"nodeKind"`
	Timestamp    time.Time      `json:"timestamp"`
	Status       NodeStatus     `json:"status"`
	Payload      map[string]any `json:"payload,omitempty"`
	DisplayText  string         `json:"displayText,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	DurationMs   int64          `json:"durationMs"`
	InputCount   int            `json:"inputCount"`
}

// ExecutionState is the full result of one pass over one graph snapshot.
// It is owned exclusively by the coordinator for the duration of a run and
// becomes immutable once a terminal status is set.
type ExecutionState struct {
	ExecutionID   string       `json:"executionId"`
	Status        RunStatus    `json:"status"`
	CurrentNodeID string       `json:"currentNodeId,omitempty"`
	Outputs       []NodeOutput `json:"outputs"`
	StartedAt     time.Time    `json:"startedAt"`
	EndedAt       time.Time    `json:"endedAt,omitzero"`
	Error         string       `json:"error,omitempty"`
}

// ExecuteRequest is the JSON body accepted by the execution endpoints.
// Seed pins the run's simulated values when present; any value works,
// including zero. A nil Seed gets a time-seeded source.
type ExecuteRequest struct {
	Graph         Graph  `json:"graph" validate:"required"`
	NodeTimeoutMs int64  `json:"nodeTimeoutMs,omitempty" validate:"gte=0"`
	Seed          *int64 `json:"seed,omitempty"`
}

// ExecuteResponse wraps the final state with the rendered trace so the
// presentation layer does not have to re-derive it.
type ExecuteResponse struct {
	ExecutionState
	Trace []string `json:"trace"`
}
