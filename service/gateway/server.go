// Package gateway exposes the coordinator over HTTP.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/viant/gator/internal/idgen"
	"github.com/viant/gator/model/action"
	"github.com/viant/gator/service/coordinator"
)

const traceHeader = "X-Trace-Id"

// Server is the HTTP front of the coordinator.
type Server struct {
	coordinator *coordinator.Service
	config      *Config
	logger      *log.Logger
}

// Option customises the server.
type Option func(*Server)

// WithLogger overrides the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithConfig overrides the configuration.
func WithConfig(config *Config) Option {
	return func(s *Server) { s.config = config }
}

// New creates a gateway over the supplied coordinator.
func New(service *coordinator.Service, options ...Option) *Server {
	ret := &Server{
		coordinator: service,
		config:      &Config{Addr: ":8080", ReadTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second, ShutdownTimeout: 5 * time.Second},
		logger:      log.Default(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /approve", s.handleApprove)
	mux.HandleFunc("GET /v1/actions", s.handleActions)
	return s.withTrace(mux)
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	request := &coordinator.AskRequest{}
	if !s.readJSON(w, r, request) {
		return
	}
	request.TraceID = r.Header.Get(traceHeader)
	if request.ActorID == "" {
		request.ActorID = r.Header.Get("X-Actor-Id")
	}
	if request.Role == "" {
		request.Role = r.Header.Get("X-Actor-Role")
	}
	response, err := s.coordinator.Ask(r.Context(), request)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	request := &coordinator.ApproveRequest{}
	if !s.readJSON(w, r, request) {
		return
	}
	response, err := s.coordinator.Approve(r.Context(), request)
	if err != nil {
		if errors.Is(err, coordinator.ErrActionNotFound) {
			s.writeError(w, http.StatusNotFound, "action_not_found")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	traceID := r.URL.Query().Get("trace_id")
	actions, err := s.coordinator.Actions(r.Context(), traceID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if actions == nil {
		actions = []*action.Action{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

// withTrace assigns each request a trace id, echoes it back and emits one
// structured log line per request.
func (s *Server) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = idgen.New()
			r.Header.Set(traceHeader, traceID)
		}
		w.Header().Set(traceHeader, traceID)
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, r)
		if s.logger != nil {
			payload, _ := json.Marshal(map[string]interface{}{
				"trace_id":   traceID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     recorder.status,
				"latency_ms": float64(time.Since(started).Microseconds()) / 1000,
			})
			s.logger.Println(string(payload))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
