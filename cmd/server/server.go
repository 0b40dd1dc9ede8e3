package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/cache"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/database"
	apperrors "github.com/mohammedqas189/ASCVD-Calculator/internal/errors"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/monitoring"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/ratelimit"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/resilience"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/risk"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/security"
)

// server owns every long-lived dependency of the HTTP API
type server struct {
	cfg     serverConfig
	logger  *monitoring.Logger
	metrics *monitoring.Metrics

	calculator *risk.Calculator
	chat       *chat.Service
	sessions   *chat.Sessions

	cache    *cache.Cache
	limiter  *ratelimit.RateLimiter
	security *security.SecurityMiddleware
	health   *resilience.HealthMonitor

	// nil when no data directory is configured
	db    *database.DB
	usage *database.UsageRecorder
	redis *ratelimit.RedisClient
}

func newServer(ctx context.Context, cfg serverConfig, logger *monitoring.Logger) (*server, error) {
	s := &server{
		cfg:        cfg,
		logger:     logger,
		metrics:    monitoring.NewMetrics(),
		calculator: risk.NewCalculator(logger.Logger),
		health: resilience.NewHealthMonitor(resilience.HealthConfig{
			CheckInterval: cfg.HealthInterval,
			CheckTimeout:  2 * time.Second,
			DownThreshold: 3,
		}, logger),
	}

	var store chat.Store = chat.NewMemoryStore()
	if cfg.DataDir != "" {
		db, err := database.NewDB(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.db = db

		repo := database.NewRepository(db)
		store = database.NewChatStore(repo)
		s.usage = database.NewUsageRecorder(repo)
		s.health.Register("sqlite", true, db.HealthCheck)
	} else {
		logger.SystemLogger("storage", "no data directory configured, chat history is kept in memory")
	}

	redisClient, err := connectRedis(ctx, cfg)
	if err != nil {
		// rate limiting falls back to the in-memory limiter
		logger.DependencyLogger("redis", false, err)
	}
	s.redis = redisClient
	if cfg.RedisAddr != "" {
		s.health.Register("redis", false, redisClient.HealthCheck)
	}

	s.limiter = ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimit:   cfg.IPLimit,
		ChatLimit: cfg.ChatLimit,
	}, s.metrics)
	s.cache = cache.NewCache(cfg.CacheTTL, cfg.CacheItems)
	s.chat = chat.NewService(store, cfg.MaxMessageLength)
	s.sessions = chat.NewSessions(cfg.JWTSecret, chat.DefaultSessionTTL)
	s.security = security.NewSecurityMiddleware(security.SecurityConfig{
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		EnableHSTS:     cfg.EnableHSTS,
	})

	return s, nil
}

// connectRedis dials redis with backoff. The returned client is never nil;
// on failure it is disabled.
func connectRedis(ctx context.Context, cfg serverConfig) (*ratelimit.RedisClient, error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewRedisClient(ctx, "", "", 0)
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 3

	var client *ratelimit.RedisClient
	err := resilience.RetryWithConfig(ctx, retry, func(ctx context.Context) error {
		var err error
		client, err = ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return err
	})
	if client == nil {
		client = &ratelimit.RedisClient{}
	}
	return client, err
}

func (s *server) Close() {
	s.limiter.Close()
	s.cache.Stop()
	apperrors.SafeClose(s.redis, "redis")
	if s.db != nil {
		apperrors.SafeClose(s.db, "database")
	}
}
