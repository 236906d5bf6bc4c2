package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshharrison/linesched/internal/flowshop"
	"github.com/joshharrison/linesched/internal/planner"
	"github.com/joshharrison/linesched/internal/production"
	"github.com/joshharrison/linesched/internal/reporter"
	"github.com/joshharrison/linesched/internal/state"
)

// Server exposes scheduling over HTTP. The most recent plan is kept in
// memory; when a Store is configured every plan is also persisted.
type Server struct {
	catalog *production.Catalog
	solver  production.MixSolver
	store   *state.Store
	config  planner.PlanConfig
	logger  *slog.Logger

	mu     sync.RWMutex
	latest *planner.Plan
}

// New creates a Server. store may be nil.
func New(catalog *production.Catalog, solver production.MixSolver, store *state.Store, config planner.PlanConfig) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
		config.Logger = logger
	}
	return &Server{
		catalog: catalog,
		solver:  solver,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", s.handleHealth)
	r.POST("/optimize", s.handleOptimize)
	r.POST("/schedule", s.handleSchedule)
	r.GET("/plans/latest", s.handleLatest)
	r.GET("/plans/:id", s.handleGetPlan)
	r.GET("/catalog", s.handleCatalog)
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleOptimize solves the production mix for the body's products_min,
// schedules it and reports per-machine idle time as machine1..machineN
// response headers alongside the JSON schedule.
func (s *Server) handleOptimize(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, fmt.Errorf("%w: read body: %v", flowshop.ErrInvalidInput, err))
		return
	}
	minimums, err := production.ParseQuantities(body, "products_min")
	if err != nil {
		s.fail(c, err)
		return
	}

	plan, err := planner.Optimize(c.Request.Context(), s.catalog, s.solver, minimums, s.config)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondPlan(c, plan)
}

func (s *Server) handleSchedule(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, fmt.Errorf("%w: read body: %v", flowshop.ErrInvalidInput, err))
		return
	}
	quantities, err := production.ParseQuantities(body, "quantities")
	if err != nil {
		s.fail(c, err)
		return
	}

	plan, err := planner.Generate(c.Request.Context(), s.catalog, quantities, s.config)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondPlan(c, plan)
}

func (s *Server) handleLatest(c *gin.Context) {
	s.mu.RLock()
	plan := s.latest
	s.mu.RUnlock()

	if plan == nil && s.store != nil {
		var err error
		plan, err = s.store.Latest()
		if err != nil && !errors.Is(err, state.ErrNoRuns) {
			s.fail(c, err)
			return
		}
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "no plan generated yet"})
		return
	}
	c.IndentedJSON(http.StatusOK, plan)
}

func (s *Server) handleGetPlan(c *gin.Context) {
	id := c.Param("id")

	s.mu.RLock()
	plan := s.latest
	s.mu.RUnlock()
	if plan != nil && plan.ID == id {
		c.IndentedJSON(http.StatusOK, plan)
		return
	}

	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("plan %s not found", id)})
		return
	}
	plan, err := s.store.Load(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, plan)
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.catalog)
}

func (s *Server) respondPlan(c *gin.Context, plan *planner.Plan) {
	s.mu.Lock()
	s.latest = plan
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(plan); err != nil {
			s.logger.Warn("failed to persist plan", "plan_id", plan.ID, "error", err)
		}
	}

	data, err := reporter.New(plan).JSON()
	if err != nil {
		s.fail(c, err)
		return
	}
	for j, idle := range plan.Schedule.Idle {
		c.Header(fmt.Sprintf("machine%d", j+1), fmt.Sprint(idle))
	}
	c.Header("X-Plan-ID", plan.ID)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// fail maps an error to a status code and writes it as {"message": ...}.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, flowshop.ErrInvalidInput),
		errors.Is(err, production.ErrInfeasible),
		errors.Is(err, production.ErrUnbounded):
		return http.StatusBadRequest
	case errors.Is(err, production.ErrSearchLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
