package automation

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service exposes the execution engine over HTTP: a synchronous REST
// endpoint and a WebSocket endpoint that streams node events as they
// happen. It holds no state between requests; each run gets a fresh
// registry so a request-supplied seed yields reproducible simulations.
type Service struct {
	defaultNodeTimeout time.Duration
	upgrader           websocket.Upgrader
}

// NewService creates a Service. allowedOrigins guards WebSocket upgrades;
// "*" allows any origin.
func NewService(defaultNodeTimeout time.Duration, allowedOrigins []string) *Service {
	return &Service{
		defaultNodeTimeout: defaultNodeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers execution HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/executions").Subrouter()
	router.StrictSlash(false)

	router.Handle("", jsonMiddleware(http.HandlerFunc(s.HandleExecute))).Methods("POST")
	router.HandleFunc("/stream", s.HandleExecuteStream).Methods("GET")
}

// engineFor builds the engine for one run, honoring a caller-pinned seed.
func (s *Service) engineFor(req ExecuteRequest) *Engine {
	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	return NewEngine(NewRegistry(rng))
}

// nodeTimeout resolves the per-node timeout for one run: the request value
// when set, otherwise the service default.
func (s *Service) nodeTimeout(req ExecuteRequest) time.Duration {
	if req.NodeTimeoutMs > 0 {
		return time.Duration(req.NodeTimeoutMs) * time.Millisecond
	}
	return s.defaultNodeTimeout
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
