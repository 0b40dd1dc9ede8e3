package resilience

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/monitoring"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("sqlite", CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  20 * time.Millisecond,
	})

	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	var called bool
	err := cb.Call(func() error { called = true; return nil })
	var cbErr *CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
	assert.False(t, called)
	assert.Equal(t, "circuit breaker sqlite is open", err.Error())

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("redis", CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
	})

	_ = cb.Call(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "open", cb.Stats()["state"])
}

func TestRetryWithConfig(t *testing.T) {
	config := RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
	}

	tests := []struct {
		name      string
		failures  int32
		retryable func(error) bool
		wantErr   bool
		wantCalls int32
	}{
		{name: "first try", failures: 0, wantCalls: 1},
		{name: "succeeds after retries", failures: 2, wantCalls: 3},
		{name: "exhausts attempts", failures: 5, wantErr: true, wantCalls: 3},
		{
			name:      "non-retryable",
			failures:  5,
			retryable: func(error) bool { return false },
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config
			cfg.Retryable = tt.retryable

			var calls int32
			err := RetryWithConfig(context.Background(), cfg, func(context.Context) error {
				if atomic.AddInt32(&calls, 1) <= tt.failures {
					return errBoom
				}
				return nil
			})

			if tt.wantErr {
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithConfig(ctx, DefaultRetryConfig(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateDelay(t *testing.T) {
	config := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(config, 0))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(config, 2))
	assert.Equal(t, time.Second, calculateDelay(config, 10))

	config.JitterEnabled = true
	d := calculateDelay(config, 0)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.Less(t, d, 110*time.Millisecond)
}

func TestHealthMonitor(t *testing.T) {
	var buf bytes.Buffer
	logger := monitoring.NewLoggerWithWriter(&buf, slog.LevelInfo)

	hm := NewHealthMonitor(HealthConfig{DownThreshold: 2, CheckTimeout: time.Second}, logger)

	var redisDown atomic.Bool
	redisDown.Store(true)

	hm.Register("sqlite", true, func(context.Context) error { return nil })
	hm.Register("redis", false, func(context.Context) error {
		if redisDown.Load() {
			return errBoom
		}
		return nil
	})

	assert.Equal(t, "healthy", hm.Status())

	hm.CheckAll(context.Background())
	snap := hm.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "redis", snap[0].Name)
	assert.Equal(t, LevelDegraded, snap[0].Level)
	assert.Equal(t, "boom", snap[0].LastError)
	assert.Equal(t, LevelHealthy, snap[1].Level)
	assert.Equal(t, "degraded", hm.Status())

	hm.CheckAll(context.Background())
	assert.Equal(t, LevelDown, hm.Snapshot()[0].Level)
	// redis is optional so the service stays up
	assert.Equal(t, "degraded", hm.Status())
	assert.Contains(t, buf.String(), "Dependency Health")

	redisDown.Store(false)
	hm.CheckAll(context.Background())
	assert.Equal(t, LevelHealthy, hm.Snapshot()[0].Level)
	assert.Equal(t, 0, hm.Snapshot()[0].ConsecutiveFailures)
	assert.Equal(t, "healthy", hm.Status())
}

func TestHealthMonitorCriticalDown(t *testing.T) {
	hm := NewHealthMonitor(HealthConfig{DownThreshold: 1}, nil)
	hm.Register("sqlite", true, func(context.Context) error { return errBoom })

	hm.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", hm.Status())
}

func TestHealthMonitorStartStops(t *testing.T) {
	hm := NewHealthMonitor(HealthConfig{CheckInterval: 5 * time.Millisecond}, nil)

	var checks int32
	hm.Register("sqlite", true, func(context.Context) error {
		atomic.AddInt32(&checks, 1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		hm.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health monitor did not stop")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&checks), int32(2))
}
