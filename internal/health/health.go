package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aashari/go-report-analyzer/internal/logger"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name        string
	Description string
	Check       func(ctx context.Context) HealthCheckResult
	Timeout     time.Duration
	Critical    bool // failure makes the whole service unhealthy
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status    HealthStatus           `json:"status"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
}

// HealthChecker manages and executes health checks
type HealthChecker struct {
	checks map[string]*HealthCheck
	mutex  sync.RWMutex
}

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]*HealthCheck),
	}
}

// RegisterCheck registers a new health check
func (hc *HealthChecker) RegisterCheck(check *HealthCheck) {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	if check.Timeout == 0 {
		check.Timeout = 5 * time.Second
	}
	hc.checks[check.Name] = check
}

// Names returns the registered check names in sorted order
func (hc *HealthChecker) Names() []string {
	hc.mutex.RLock()
	defer hc.mutex.RUnlock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteCheck executes a single health check
func (hc *HealthChecker) ExecuteCheck(ctx context.Context, name string) (*HealthCheckResult, error) {
	hc.mutex.RLock()
	check, exists := hc.checks[name]
	hc.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("health check %s not found", name)
	}

	result := hc.executeCheck(ctx, check)
	return &result, nil
}

// ExecuteAllChecks executes all registered health checks concurrently
func (hc *HealthChecker) ExecuteAllChecks(ctx context.Context) map[string]HealthCheckResult {
	hc.mutex.RLock()
	checks := make([]*HealthCheck, 0, len(hc.checks))
	for _, check := range hc.checks {
		checks = append(checks, check)
	}
	hc.mutex.RUnlock()

	results := make(map[string]HealthCheckResult, len(checks))
	var wg sync.WaitGroup
	var resultMutex sync.Mutex

	for _, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := hc.executeCheck(ctx, check)

			resultMutex.Lock()
			results[check.Name] = result
			resultMutex.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// executeCheck executes a single health check with timeout
func (hc *HealthChecker) executeCheck(ctx context.Context, check *HealthCheck) HealthCheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	result := check.Check(checkCtx)
	result.Timestamp = start
	result.Duration = time.Since(start)
	return result
}

// GetOverallHealth determines the overall service health.
// A failing critical check is unhealthy; any other failure is degraded.
func (hc *HealthChecker) GetOverallHealth(ctx context.Context) (HealthStatus, map[string]HealthCheckResult) {
	results := hc.ExecuteAllChecks(ctx)

	hc.mutex.RLock()
	defer hc.mutex.RUnlock()

	overallStatus := StatusHealthy
	for name, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			if check, ok := hc.checks[name]; ok && check.Critical {
				overallStatus = StatusUnhealthy
			} else if overallStatus == StatusHealthy {
				overallStatus = StatusDegraded
			}
		case StatusDegraded:
			if overallStatus == StatusHealthy {
				overallStatus = StatusDegraded
			}
		}
	}

	if overallStatus != StatusHealthy {
		logger.Warn(logger.WithComponent(ctx, logger.ComponentNames.Handler), "Health check degraded or unhealthy",
			"overall_status", string(overallStatus),
			"total_checks", len(results),
		)
	}
	return overallStatus, results
}
