//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

// Package scenario exposes the scenario engine over HTTP for the visual
// builder frontend: one endpoint to advance a run by a turn, one for run
// statistics and a health probe.
package scenario

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-scenario-go/log"
	"trpc.group/trpc-go/trpc-scenario-go/runlog"
	"trpc.group/trpc-go/trpc-scenario-go/scenario"
)

// RunRequest is the body of POST /runScenario. State must be the state
// returned by the previous call, replayed verbatim, for the run to continue.
type RunRequest struct {
	UserID     string           `json:"userId"`
	ScenarioID string           `json:"scenarioId,omitempty"`
	Nodes      []scenario.Node  `json:"nodes"`
	Edges      []scenario.Edge  `json:"edges"`
	Text       string           `json:"text"`
	State      *scenario.State  `json:"state,omitempty"`
	Action     *scenario.Action `json:"action,omitempty"`
}

// RunResponse is the body returned by POST /runScenario.
type RunResponse struct {
	OK       bool                  `json:"ok"`
	RunID    string                `json:"runId"`
	Messages []scenario.Message    `json:"messages"`
	Slots    map[string]any        `json:"slots"`
	Vars     map[string]any        `json:"vars"`
	Trace    []scenario.TraceEntry `json:"trace"`
	Awaiting *scenario.Awaiting    `json:"awaiting"`
	State    *scenario.State       `json:"state"`
}

// Server serves the scenario engine endpoints.
type Server struct {
	router   *mux.Router
	executor *scenario.Executor
	sink     *runlog.Sink
}

// Option configures the Server instance.
type Option func(*Server)

// WithExecutor replaces the default executor, e.g. to share a compile cache
// or tighten the per-turn step bound.
func WithExecutor(e *scenario.Executor) Option {
	return func(s *Server) {
		if e != nil {
			s.executor = e
		}
	}
}

// WithSink sets the telemetry sink. Without one, runs execute but produce no
// telemetry.
func WithSink(sink *runlog.Sink) Option {
	return func(s *Server) { s.sink = sink }
}

// New creates the server with its routes and CORS middleware registered.
func New(opts ...Option) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		executor: scenario.NewExecutor(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/runScenario", s.handleRunScenario).Methods(http.MethodPost)
	s.router.HandleFunc("/stats/summary", s.handleStatsSummary).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]bool{"ok": true})
}

// handleRunScenario advances one turn. Engine anomalies never map to HTTP
// errors: the caller always receives a well-formed response, and anomalies are
// visible only in the trace.
func (s *Server) handleRunScenario(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	g := &scenario.Graph{Nodes: req.Nodes, Edges: req.Edges}
	var traceStart int
	if req.State != nil {
		traceStart = len(req.State.Trace)
	}

	state, err := s.executor.Execute(r.Context(), g, req.Text, req.State, req.Action)
	if err != nil {
		// Only context cancellation reaches here; the client is gone.
		log.Warnf("scenario server: run %s aborted: %v", state.RunID, err)
		return
	}

	if s.sink != nil {
		s.sink.RecordTurn(req.UserID, s.scenarioID(&req, state), state, state.TraceSince(traceStart))
	}

	s.writeJSON(w, RunResponse{
		OK:       true,
		RunID:    state.RunID,
		Messages: state.Messages,
		Slots:    state.Slots,
		Vars:     state.Vars,
		Trace:    state.Trace,
		Awaiting: state.Awaiting,
		State:    state,
	})
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		http.Error(w, "statistics not enabled", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	scenarioID := q.Get("scenarioId")
	if scenarioID == "" {
		scenarioID = "builder-sample"
	}
	from, ok := s.parseTS(w, q.Get("fromTs"))
	if !ok {
		return
	}
	to, ok := s.parseTS(w, q.Get("toTs"))
	if !ok {
		return
	}

	summary, err := s.sink.Summarize(scenarioID, from, to)
	if err != nil {
		log.Errorf("scenario server: summarize %s: %v", scenarioID, err)
		http.Error(w, "failed to aggregate statistics", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, summary)
}

// scenarioID resolves the scenario identity for telemetry: the request field,
// else whatever a previous turn stamped into vars, else a fixed fallback.
func (s *Server) scenarioID(req *RunRequest, state *scenario.State) string {
	if req.ScenarioID != "" {
		return req.ScenarioID
	}
	if v, ok := state.Vars["__scenarioId__"].(string); ok && v != "" {
		return v
	}
	return "builder-sample"
}

func (s *Server) parseTS(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		http.Error(w, "invalid timestamp: "+raw, http.StatusBadRequest)
		return time.Time{}, false
	}
	return ts, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
