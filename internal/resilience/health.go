package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/monitoring"
)

// HealthLevel is the state of a single dependency
type HealthLevel string

const (
	LevelHealthy  HealthLevel = "healthy"
	LevelDegraded HealthLevel = "degraded"
	LevelDown     HealthLevel = "down"
)

// HealthConfig holds configuration for dependency health checks
type HealthConfig struct {
	CheckInterval time.Duration `json:"check_interval"`
	CheckTimeout  time.Duration `json:"check_timeout"`
	// Consecutive failures before a dependency is reported down
	DownThreshold int `json:"down_threshold"`
}

// DefaultHealthConfig returns sensible defaults
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		CheckInterval: 30 * time.Second,
		CheckTimeout:  2 * time.Second,
		DownThreshold: 3,
	}
}

// HealthCheckFunc represents a function that checks dependency health
type HealthCheckFunc func(ctx context.Context) error

// DependencyHealth is a point-in-time view of one dependency
type DependencyHealth struct {
	Name                string      `json:"name"`
	Level               HealthLevel `json:"level"`
	Critical            bool        `json:"critical"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	LastError           string      `json:"last_error,omitempty"`
	LastChecked         time.Time   `json:"last_checked"`
}

type dependency struct {
	health DependencyHealth
	check  HealthCheckFunc
}

// HealthMonitor tracks optional backing services (sqlite, redis) so /health
// can report them. The risk evaluator itself has no dependencies.
type HealthMonitor struct {
	config HealthConfig
	logger *monitoring.Logger

	mu   sync.RWMutex
	deps map[string]*dependency
}

func NewHealthMonitor(config HealthConfig, logger *monitoring.Logger) *HealthMonitor {
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = DefaultHealthConfig().CheckTimeout
	}
	if config.DownThreshold <= 0 {
		config.DownThreshold = DefaultHealthConfig().DownThreshold
	}
	return &HealthMonitor{
		config: config,
		logger: logger,
		deps:   make(map[string]*dependency),
	}
}

// Register adds a dependency. Critical dependencies make the overall status
// unhealthy when down; others only degrade it.
func (hm *HealthMonitor) Register(name string, critical bool, check HealthCheckFunc) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	hm.deps[name] = &dependency{
		health: DependencyHealth{Name: name, Level: LevelHealthy, Critical: critical},
		check:  check,
	}
}

// CheckAll runs every registered check concurrently and waits for them
func (hm *HealthMonitor) CheckAll(ctx context.Context) {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.deps))
	checks := make([]HealthCheckFunc, 0, len(hm.deps))
	for name, dep := range hm.deps {
		names = append(names, name)
		checks = append(checks, dep.check)
	}
	hm.mu.RUnlock()

	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, hm.config.CheckTimeout)
			defer cancel()

			hm.record(name, check(checkCtx))
		}(names[i], checks[i])
	}
	wg.Wait()
}

func (hm *HealthMonitor) record(name string, err error) {
	hm.mu.Lock()
	dep, ok := hm.deps[name]
	if !ok {
		hm.mu.Unlock()
		return
	}

	h := &dep.health
	oldLevel := h.Level
	h.LastChecked = time.Now()

	if err == nil {
		h.ConsecutiveFailures = 0
		h.LastError = ""
		h.Level = LevelHealthy
	} else {
		h.ConsecutiveFailures++
		h.LastError = err.Error()
		h.Level = LevelDegraded
		if h.ConsecutiveFailures >= hm.config.DownThreshold {
			h.Level = LevelDown
		}
	}
	newLevel := h.Level
	hm.mu.Unlock()

	if oldLevel != newLevel && hm.logger != nil {
		hm.logger.DependencyLogger(name, newLevel == LevelHealthy, err)
	}
}

// Start runs CheckAll on every interval until ctx is done
func (hm *HealthMonitor) Start(ctx context.Context) {
	if hm.config.CheckInterval <= 0 {
		return
	}

	hm.CheckAll(ctx)

	ticker := time.NewTicker(hm.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hm.CheckAll(ctx)
		}
	}
}

// Snapshot returns a copy of every dependency's health, sorted by name
func (hm *HealthMonitor) Snapshot() []DependencyHealth {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	out := make([]DependencyHealth, 0, len(hm.deps))
	for _, dep := range hm.deps {
		out = append(out, dep.health)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Status folds dependency levels into "healthy", "degraded" or "unhealthy"
func (hm *HealthMonitor) Status() string {
	status := "healthy"
	for _, h := range hm.Snapshot() {
		switch {
		case h.Level == LevelDown && h.Critical:
			return "unhealthy"
		case h.Level != LevelHealthy:
			status = "degraded"
		}
	}
	return status
}
