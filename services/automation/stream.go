package automation

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// StreamEvent is a single frame on the execution WebSocket.
type StreamEvent struct {
	Type    string          `json:"type"` // node | complete | error
	Output  *NodeOutput     `json:"output,omitempty"`
	State   *ExecutionState `json:"state,omitempty"`
	Trace   []string        `json:"trace,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HandleExecuteStream upgrades the connection, reads one ExecuteRequest
// frame, and streams every NodeOutput event as the run progresses, closing
// with a "complete" frame (or "error" for a structurally invalid graph).
func (s *Service) HandleExecuteStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req ExecuteRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(StreamEvent{Type: "error", Message: "invalid request frame"})
		return
	}
	if err := validate.Struct(req); err != nil {
		conn.WriteJSON(StreamEvent{Type: "error", Message: err.Error()})
		return
	}

	engine := s.engineFor(req)
	state, runErr := engine.Run(r.Context(), &req.Graph, RunOptions{
		NodeTimeout: s.nodeTimeout(req),
		OnProgress: func(output NodeOutput) {
			if err := conn.WriteJSON(StreamEvent{Type: "node", Output: &output}); err != nil {
				log.Debug().Err(err).Msg("dropping progress frame, client gone")
			}
		},
	})

	var graphErr *GraphError
	if errors.As(runErr, &graphErr) {
		conn.WriteJSON(StreamEvent{Type: "error", Message: graphErr.Error(), State: state})
		return
	}

	conn.WriteJSON(StreamEvent{
		Type:  "complete",
		State: state,
		Trace: FormatTrace(state.Outputs),
	})
}
