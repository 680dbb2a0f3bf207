package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeSource struct {
	mu        sync.Mutex
	height    int64
	lastBlock time.Time
	brokenMsg string
	busy      bool
	calls     int
}

func (f *fakeSource) Height() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height
}

func (f *fakeSource) LastBlockTime() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBlock
}

func (f *fakeSource) CheckInvariants() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.brokenMsg, f.brokenMsg != ""
}

func (f *fakeSource) PoolBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

type HealthCheckTestSuite struct {
	suite.Suite
	source  *fakeSource
	checker *Checker
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (suite *HealthCheckTestSuite) SetupTest() {
	suite.source = &fakeSource{height: 7, lastBlock: time.Now()}

	cfg := DefaultConfig()
	cfg.CacheDuration = 0
	cfg.MaxBlockAge = time.Minute
	cfg.Version = "test"

	checker, err := NewChecker(log.NewNopLogger(), cfg, suite.source)
	suite.Require().NoError(err)
	suite.checker = checker
}

func (suite *HealthCheckTestSuite) get(path string) (*httptest.ResponseRecorder, HealthCheck) {
	router := mux.NewRouter()
	suite.checker.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

	var health HealthCheck
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&health))
	return w, health
}

func (suite *HealthCheckTestSuite) TestReadyWhenHealthy() {
	w, health := suite.get("/health/ready")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().Equal(StatusHealthy, health.Status)
	suite.Require().Equal("test", health.Version)
	suite.Require().Len(health.Components, 3)
	suite.Require().Nil(health.Components["store"].Metrics)
}

func (suite *HealthCheckTestSuite) TestDetailedIncludesMetrics() {
	w, health := suite.get("/health/detailed")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().EqualValues(7, health.Components["store"].Metrics["height"])
}

func (suite *HealthCheckTestSuite) TestBrokenInvariantIsUnhealthy() {
	suite.source.brokenMsg = "pool: conservation invariant broken"

	w, health := suite.get("/health/ready")
	suite.Require().Equal(http.StatusServiceUnavailable, w.Code)
	suite.Require().Equal(StatusUnhealthy, health.Status)
	suite.Require().Equal(suite.source.brokenMsg, health.Components["invariants"].Message)
}

func (suite *HealthCheckTestSuite) TestLeakedGuardMarkerIsUnhealthy() {
	suite.source.busy = true

	w, health := suite.get("/health/ready")
	suite.Require().Equal(http.StatusServiceUnavailable, w.Code)
	suite.Require().Equal(StatusUnhealthy, health.Components["guard"].Status)
}

func (suite *HealthCheckTestSuite) TestIdleStoreIsDegradedButReady() {
	suite.source.lastBlock = time.Now().Add(-time.Hour)

	w, health := suite.get("/health/ready")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().Equal(StatusDegraded, health.Status)
	suite.Require().Equal(StatusDegraded, health.Components["store"].Status)
}

func (suite *HealthCheckTestSuite) TestNoCommittedStateIsUnhealthy() {
	suite.source.height = 0

	_, health := suite.get("/health/ready")
	suite.Require().Equal(StatusUnhealthy, health.Components["store"].Status)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 5*time.Second, cfg.CacheDuration)
	require.Zero(t, cfg.MaxBlockAge)
}

func TestNewChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      Config
		source      Source
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: DefaultConfig(),
			source: &fakeSource{},
		},
		{
			name:        "missing source",
			config:      DefaultConfig(),
			expectError: true,
			errorMsg:    "health source is required",
		},
		{
			name:        "negative cache duration",
			config:      Config{CacheDuration: -time.Second},
			source:      &fakeSource{},
			expectError: true,
			errorMsg:    "must not be negative",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker, err := NewChecker(log.NewNopLogger(), tt.config, tt.source)

			if tt.expectError {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errorMsg)
				require.Nil(t, checker)
			} else {
				require.NoError(t, err)
				require.NotNil(t, checker)
				require.Equal(t, tt.config.CacheDuration, checker.cacheDuration)
			}
		})
	}
}

func TestCalculateOverallStatus(t *testing.T) {
	t.Parallel()

	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), &fakeSource{})
	require.NoError(t, err)

	tests := []struct {
		name       string
		components map[string]ComponentHealth
		expected   Status
	}{
		{
			name: "all healthy",
			components: map[string]ComponentHealth{
				"store":      {Status: StatusHealthy},
				"invariants": {Status: StatusHealthy},
				"guard":      {Status: StatusHealthy},
			},
			expected: StatusHealthy,
		},
		{
			name: "one degraded",
			components: map[string]ComponentHealth{
				"store":      {Status: StatusDegraded},
				"invariants": {Status: StatusHealthy},
			},
			expected: StatusDegraded,
		},
		{
			name: "unhealthy takes precedence over degraded",
			components: map[string]ComponentHealth{
				"store":      {Status: StatusDegraded},
				"invariants": {Status: StatusUnhealthy},
			},
			expected: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, checker.calculateOverallStatus(tt.components))
		})
	}
}

func TestCheckUsesCache(t *testing.T) {
	source := &fakeSource{height: 1}
	cfg := DefaultConfig()
	cfg.CacheDuration = time.Hour

	checker, err := NewChecker(log.NewNopLogger(), cfg, source)
	require.NoError(t, err)
	require.False(t, checker.shouldUseCached())

	_, err = checker.Check(t.Context(), false)
	require.NoError(t, err)
	_, err = checker.Check(t.Context(), false)
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	// detailed checks bypass the cache
	_, err = checker.Check(t.Context(), true)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), &fakeSource{height: 3})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	checker.handleHealth(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, "ok", response["status"])
	require.EqualValues(t, 3, response["height"])
}

func TestConcurrentHealthChecks(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CacheDuration = 100 * time.Millisecond
	checker, err := NewChecker(log.NewNopLogger(), cfg, &fakeSource{height: 1, lastBlock: time.Now()})
	require.NoError(t, err)

	const numRequests = 10
	results := make(chan error, numRequests)

	for i := 0; i < numRequests; i++ {
		go func() {
			req := httptest.NewRequest("GET", "/health/ready", nil)
			w := httptest.NewRecorder()
			checker.handleHealthReady(w, req)

			if w.Code != http.StatusOK {
				results <- fmt.Errorf("unexpected status %d", w.Code)
				return
			}

			results <- nil
		}()
	}

	for i := 0; i < numRequests; i++ {
		require.NoError(t, <-results, "Concurrent request %d failed", i)
	}
}
