package automation

import (
	"fmt"
	"strings"
)

// GraphErrorKind classifies structural graph errors. These are the only
// errors that abort a run before any node executes; node-level failures are
// recorded in the trace instead.
type GraphErrorKind string

const (
	CycleDetected     GraphErrorKind = "cycle_detected"
	DanglingReference GraphErrorKind = "dangling_reference"
	DuplicateNodeID   GraphErrorKind = "duplicate_node_id"
)

// GraphError reports a structurally invalid graph.
type GraphError struct {
	Kind GraphErrorKind
	// NodeID is the node holding the offending reference (dangling/duplicate).
	NodeID string
	// TargetID is the missing connection target for dangling references.
	TargetID string
	// NodeIDs lists the nodes left unordered when a cycle is detected.
	NodeIDs []string
}

func (e *GraphError) Error() string {
	switch e.Kind {
	case CycleDetected:
		return fmt.Sprintf("graph contains a cycle involving nodes [%s]", strings.Join(e.NodeIDs, ", "))
	case DanglingReference:
		return fmt.Sprintf("node %q connects to nonexistent node %q", e.NodeID, e.TargetID)
	case DuplicateNodeID:
		return fmt.Sprintf("duplicate node id %q", e.NodeID)
	default:
		return fmt.Sprintf("invalid graph: %s", e.Kind)
	}
}

func cycleError(nodeIDs []string) *GraphError {
	return &GraphError{Kind: CycleDetected, NodeIDs: nodeIDs}
}

func danglingError(nodeID, targetID string) *GraphError {
	return &GraphError{Kind: DanglingReference, NodeID: nodeID, TargetID: targetID}
}

func duplicateError(nodeID string) *GraphError {
	return &GraphError{Kind: DuplicateNodeID, NodeID: nodeID}
}
