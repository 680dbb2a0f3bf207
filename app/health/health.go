// Package health reports whether a pair pool node is fit to serve traffic.
//
// The checker looks at three components:
// - store: a committed height exists and blocks are recent
// - invariants: reserves match ledger balances and shares sum to the supply
// - guard: no reentrancy marker was committed
//
// The endpoints are:
// - /health - Basic liveness check
// - /health/ready - Readiness check for load balancers
// - /health/detailed - Component status with metrics, never cached
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Source is the node state the checker inspects.
type Source interface {
	Height() int64
	LastBlockTime() time.Time
	CheckInvariants() (string, bool)
	PoolBusy() bool
}

// Checker performs health checks against a Source.
type Checker struct {
	logger  log.Logger
	source  Source
	version string

	// idle longer than this reports the store as degraded; zero disables it
	maxBlockAge time.Duration

	mu            sync.RWMutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// Config holds configuration for the health checker
type Config struct {
	// MaxBlockAge is how long the node may go without a block before the
	// store is reported as degraded. Zero disables the check.
	MaxBlockAge time.Duration

	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration

	// Version is reported in every check.
	Version string
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		CacheDuration: 5 * time.Second,
	}
}

// NewChecker creates a new health checker
func NewChecker(logger log.Logger, cfg Config, source Source) (*Checker, error) {
	if source == nil {
		return nil, fmt.Errorf("health source is required")
	}
	if cfg.MaxBlockAge < 0 || cfg.CacheDuration < 0 {
		return nil, fmt.Errorf("durations must not be negative")
	}

	return &Checker{
		logger:        logger.With("module", "health"),
		source:        source,
		version:       cfg.Version,
		maxBlockAge:   cfg.MaxBlockAge,
		cacheDuration: cfg.CacheDuration,
	}, nil
}

// Check runs every component check. Non-detailed checks may be served from
// the cache.
func (c *Checker) Check(ctx context.Context, detailed bool) (*HealthCheck, error) {
	if !detailed && c.shouldUseCached() {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.cachedHealth, nil
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: make(map[string]ComponentHealth),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	checks := []struct {
		name string
		fn   func(context.Context) ComponentHealth
	}{
		{"store", c.checkStore},
		{"invariants", c.checkInvariants},
		{"guard", c.checkGuard},
	}

	for _, check := range checks {
		wg.Add(1)
		go func(name string, fn func(context.Context) ComponentHealth) {
			defer wg.Done()
			result := fn(ctx)
			mu.Lock()
			health.Components[name] = result
			mu.Unlock()
		}(check.name, check.fn)
	}

	wg.Wait()

	health.Status = c.calculateOverallStatus(health.Components)
	if !detailed {
		for name, component := range health.Components {
			component.Metrics = nil
			health.Components[name] = component
		}
	}

	c.mu.Lock()
	c.lastCheck = time.Now()
	c.cachedHealth = health
	c.mu.Unlock()

	return health, nil
}

// checkStore verifies that state has been committed and is recent
func (c *Checker) checkStore(_ context.Context) ComponentHealth {
	height := c.source.Height()
	lastBlock := c.source.LastBlockTime()

	metrics := map[string]interface{}{
		"height": height,
	}
	if !lastBlock.IsZero() {
		metrics["last_block_time"] = lastBlock.Format(time.RFC3339)
	}

	if height <= 0 {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   "No committed state",
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}

	if c.maxBlockAge > 0 && !lastBlock.IsZero() {
		age := time.Since(lastBlock)
		metrics["block_age_seconds"] = age.Seconds()
		if age > c.maxBlockAge {
			return ComponentHealth{
				Status:    StatusDegraded,
				Message:   fmt.Sprintf("No block for %.1f minutes", age.Minutes()),
				Timestamp: time.Now(),
				Metrics:   metrics,
			}
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("Committed height %d", height),
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

// checkInvariants runs the pool invariants against committed state
func (c *Checker) checkInvariants(_ context.Context) ComponentHealth {
	msg, broken := c.source.CheckInvariants()
	if broken {
		c.logger.Error("pool invariant broken", "details", msg)
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   msg,
			Timestamp: time.Now(),
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "Pool invariants hold",
		Timestamp: time.Now(),
	}
}

// checkGuard verifies that no reentrancy marker leaked into committed state
func (c *Checker) checkGuard(_ context.Context) ComponentHealth {
	if c.source.PoolBusy() {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   "Reentrancy marker present in committed state",
			Timestamp: time.Now(),
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "Pool is idle",
		Timestamp: time.Now(),
	}
}

// calculateOverallStatus determines the overall health status based on component statuses
func (c *Checker) calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// shouldUseCached determines if cached health check results should be used
func (c *Checker) shouldUseCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil {
		return false
	}

	return time.Since(c.lastCheck) < c.cacheDuration
}

// RegisterRoutes registers health check endpoints on router
func (c *Checker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.handleHealth).Methods("GET")
	router.HandleFunc("/health/ready", c.handleHealthReady).Methods("GET")
	router.HandleFunc("/health/detailed", c.handleHealthDetailed).Methods("GET")
}

// handleHealth handles the basic liveness check endpoint
func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"height":    c.source.Height(),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleHealthReady handles the readiness check endpoint
func (c *Checker) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	c.serveCheck(w, r, false)
}

// handleHealthDetailed handles the detailed health check endpoint
func (c *Checker) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	c.serveCheck(w, r, true)
}

func (c *Checker) serveCheck(w http.ResponseWriter, r *http.Request, detailed bool) {
	health, err := c.Check(r.Context(), detailed)
	if err != nil {
		c.logger.Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	// degraded is still ready
	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, health)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
