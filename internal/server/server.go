// Package server implements the HTTP and JSON-RPC surface of the TAIGA
// optimization service. It manages asynchronous optimization runs and
// provides endpoints to start, monitor, and cancel them.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/copyleftdev/TAIGA/internal/config"
	"github.com/copyleftdev/TAIGA/internal/metrics"
	"github.com/copyleftdev/TAIGA/internal/optimization"
	"github.com/copyleftdev/TAIGA/internal/optimization/objectives"
	"github.com/copyleftdev/TAIGA/internal/optimization/registry"
)

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// OptimizeRequest is the payload accepted by both the REST endpoint and the
// optimization.start JSON-RPC method. The embedded registry config selects
// and tunes the algorithm; the remaining fields pick the objective.
type OptimizeRequest struct {
	registry.Config

	// Objective names a benchmark function from the catalog.
	Objective string `json:"objective"`

	// Dimensions sets the problem dimensionality; zero picks the
	// objective's default.
	Dimensions int `json:"dimensions,omitempty"`

	// Maximize flips the search direction; the default is minimization.
	Maximize bool `json:"maximize,omitempty"`

	// Bounds optionally override the objective's canonical domain. When
	// set, their length must match the dimensionality.
	Bounds []optimization.Bound `json:"bounds,omitempty"`
}

// RunState tracks one optimization run. Snapshot-copied under the server
// mutex before serialization.
type RunState struct {
	ID          string               `json:"id"`
	Algorithm   string               `json:"algorithm"`
	Objective   string               `json:"objective"`
	Status      string               `json:"status"`
	StartTime   time.Time            `json:"startTime"`
	EndTime     *time.Time           `json:"endTime,omitempty"`
	LastUpdated time.Time            `json:"lastUpdated"`
	Result      *optimization.Result `json:"result,omitempty"`
	Error       string               `json:"error,omitempty"`

	cancel context.CancelFunc
}

// Server manages optimization runs behind the HTTP API.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	mu   sync.RWMutex
	runs map[string]*RunState

	// sem bounds the number of concurrently executing runs.
	sem chan struct{}
}

// NewServer creates a server instance with the given config and logger.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	workers := cfg.Optimization.MaxConcurrentRuns
	if workers <= 0 {
		workers = 1
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		runs:   make(map[string]*RunState),
		sem:    make(chan struct{}, workers),
	}
}

// RegisterRoutes mounts the REST and JSON-RPC endpoints.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/algorithms", s.handleAlgorithms)
		r.Get("/objectives", s.handleObjectives)
	})

	r.Post("/rpc", s.handleJSONRPC)
}

// start validates the request, reserves a worker slot, and launches the run.
func (s *Server) start(req *OptimizeRequest) (*RunState, error) {
	problem, err := objectives.Problem(req.Objective, req.Dimensions, !req.Maximize)
	if err != nil {
		return nil, optimization.WrapError(err, "invalid optimize request").WithComponent("server")
	}
	if req.Bounds != nil {
		if len(req.Bounds) != problem.Dimensions {
			return nil, optimization.NewErrorf("got %d bounds for %d dimensions",
				len(req.Bounds), problem.Dimensions).WithComponent("server")
		}
		problem.Bounds = req.Bounds
	}
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	regCfg := req.Config
	if regCfg.Seed == 0 {
		regCfg.Seed = s.cfg.Optimization.DefaultSeed
	}
	opt, err := registry.New(problem, regCfg)
	if err != nil {
		return nil, err
	}

	select {
	case s.sem <- struct{}{}:
	default:
		return nil, optimization.NewError("too many concurrent runs").WithComponent("server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	state := &RunState{
		ID:          uuid.NewString(),
		Algorithm:   req.Algorithm,
		Objective:   req.Objective,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		cancel:      cancel,
	}

	s.mu.Lock()
	s.runs[state.ID] = state
	s.mu.Unlock()

	metrics.RunsStarted.WithLabelValues(req.Algorithm).Inc()
	s.logger.Info("optimization started",
		zap.String("run_id", state.ID),
		zap.String("algorithm", req.Algorithm),
		zap.String("objective", req.Objective),
	)

	go s.run(ctx, state, opt)

	return state, nil
}

// run executes one optimization to completion and records its outcome. The
// worker slot is released on exit.
func (s *Server) run(ctx context.Context, state *RunState, opt optimization.Optimizer) {
	defer func() { <-s.sem }()

	s.mu.Lock()
	if state.Status == StatusPending {
		state.Status = StatusRunning
		state.LastUpdated = time.Now()
	}
	s.mu.Unlock()

	started := time.Now()
	result, err := opt.Optimize(ctx)
	elapsed := time.Since(started)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A cancel may have marked the run terminal already; keep that verdict.
	if state.Status == StatusRunning || state.Status == StatusPending {
		if err != nil {
			state.Status = StatusFailed
			state.Error = err.Error()
		} else {
			state.Status = StatusCompleted
			state.Result = result
		}
	}
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	metrics.RunsCompleted.WithLabelValues(state.Algorithm, state.Status).Inc()
	metrics.RunDuration.WithLabelValues(state.Algorithm).Observe(elapsed.Seconds())
	if result != nil {
		metrics.Evaluations.WithLabelValues(state.Algorithm).Add(float64(result.Evaluations))
	}

	if err != nil {
		s.logger.Error("optimization finished with error",
			zap.String("run_id", state.ID),
			zap.String("status", state.Status),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("optimization completed",
		zap.String("run_id", state.ID),
		zap.Float64("fitness", result.Fitness),
		zap.Int("evaluations", result.Evaluations),
		zap.Duration("elapsed", elapsed),
	)
}

// status returns a snapshot of the run, safe to serialize.
func (s *Server) status(id string) (*RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.runs[id]
	if !ok {
		return nil, optimization.NewErrorf("run %q not found", id).WithComponent("server")
	}
	snapshot := *state
	return &snapshot, nil
}

// cancelRun cancels a pending or running run. Terminal runs cannot be
// cancelled.
func (s *Server) cancelRun(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.runs[id]
	if !ok {
		return optimization.NewErrorf("run %q not found", id).WithComponent("server")
	}
	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return optimization.NewErrorf("cannot cancel run with status %s", state.Status).
			WithComponent("server")
	}

	if state.cancel != nil {
		state.cancel()
	}
	state.Status = StatusCancelled
	state.LastUpdated = time.Now()

	s.logger.Info("optimization cancelled", zap.String("run_id", id))
	return nil
}

// Close cancels every run still in flight.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.runs {
		if state.cancel != nil {
			state.cancel()
		}
	}
	return nil
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	state, err := s.start(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": state.ID,
		"status": state.Status,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.status(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.cancelRun(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusCancelled})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"algorithms": registry.Algorithms()})
}

func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"objectives": objectives.Names()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
