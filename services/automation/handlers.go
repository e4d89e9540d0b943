package automation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandleExecute runs a graph supplied in the request body and returns the
// final execution state with the rendered trace. Node-level failures still
// yield a 200 with a full trace; only a structurally invalid graph is
// rejected.
func (s *Service) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	engine := s.engineFor(req)
	state, err := engine.Run(r.Context(), &req.Graph, RunOptions{
		NodeTimeout: s.nodeTimeout(req),
	})

	var graphErr *GraphError
	if errors.As(err, &graphErr) {
		writeError(w, http.StatusUnprocessableEntity, graphErr.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("execution failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ExecuteResponse{
		ExecutionState: *state,
		Trace:          FormatTrace(state.Outputs),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
