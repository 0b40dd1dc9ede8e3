package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/resilience"
)

// ChatStore adapts the repository to chat.Store
type ChatStore struct {
	repo *Repository
}

func NewChatStore(repo *Repository) *ChatStore {
	return &ChatStore{repo: repo}
}

func (s *ChatStore) Append(ctx context.Context, msg chat.Message) error {
	return s.repo.InsertMessage(ctx, msg)
}

func (s *ChatStore) List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	return s.repo.ListMessages(ctx, sessionID, limit)
}

// UsageRecorder writes calculation outcomes. Failures are logged, not returned,
// and a run of failures stops writes until the breaker recovers.
type UsageRecorder struct {
	repo    *Repository
	breaker *resilience.CircuitBreaker
}

func NewUsageRecorder(repo *Repository) *UsageRecorder {
	return &UsageRecorder{
		repo: repo,
		breaker: resilience.NewCircuitBreaker("calculation_logs", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
		}),
	}
}

func (u *UsageRecorder) Record(ctx context.Context, profile, outcome string, d time.Duration) {
	err := u.breaker.Call(func() error {
		return u.repo.LogCalculation(ctx, NewCalculationLog(profile, outcome, d))
	})
	if err == nil {
		return
	}

	var open *resilience.CircuitBreakerError
	if errors.As(err, &open) {
		slog.Debug("Skipping calculation log", "reason", err.Error())
		return
	}
	slog.Warn("Failed to record calculation", "error", err, "outcome", outcome)
}

// BreakerStats reports the state of the write breaker
func (u *UsageRecorder) BreakerStats() map[string]interface{} {
	return u.breaker.Stats()
}

// Stats returns aggregates for the trailing window
func (u *UsageRecorder) Stats(ctx context.Context, window time.Duration) ([]CalculationStat, error) {
	return u.repo.CalculationStats(ctx, time.Now().Add(-window))
}
