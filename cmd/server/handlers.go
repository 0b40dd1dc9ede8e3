package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/cache"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
	apperrors "github.com/mohammedqas189/ASCVD-Calculator/internal/errors"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/ratelimit"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/risk"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/security"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/types"
)

const (
	statsWindow     = 24 * time.Hour
	jsonContentType = "application/json; charset=utf-8"
)

func (s *server) handleHealth(c *gin.Context) {
	status := s.health.Status()

	resp := types.HealthResponse{
		Status:       status,
		Timestamp:    time.Now().Format(time.RFC3339),
		Version:      version,
		Dependencies: s.health.Snapshot(),
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (s *server) handleStats(c *gin.Context) {
	stats := gin.H{
		"metrics":      s.metrics.GetStats(),
		"calculations": s.metrics.GetCalculationStats(),
		"cache":        s.cache.Stats(),
		"rate_limit":   s.limiter.GetStats(),
		"redis":        s.redis.GetPoolStats(),
		"timestamp":    time.Now().Format(time.RFC3339),
	}

	if s.db != nil {
		dbStats := gin.H{
			"pool":    s.db.GetPoolStats(),
			"breaker": s.usage.BreakerStats(),
		}
		usage, err := s.usage.Stats(c.Request.Context(), statsWindow)
		if err != nil {
			dbStats["error"] = err.Error()
		} else {
			dbStats["calculations_24h"] = usage
		}
		stats["database"] = dbStats
	}

	c.JSON(http.StatusOK, stats)
}

func (s *server) handleProfiles(c *gin.Context) {
	profiles := risk.Profiles()
	resp := types.ProfilesResponse{Profiles: make([]types.ProfileInfo, 0, len(profiles))}

	for _, p := range profiles {
		coeffs, err := risk.CoefficientsFor(p)
		if err != nil {
			_ = c.Error(err)
			return
		}
		resp.Profiles = append(resp.Profiles, types.ProfileInfo{
			Sex:          p.Sex,
			Race:         p.Race,
			Coefficients: coeffs,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (s *server) handleCalculate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid_request", "Request body could not be read", nil, err))
		return
	}

	ctx := c.Request.Context()
	start := time.Now()
	key := cache.Key(calculateRoute, body)

	if cached, found := s.cache.Get(key); found {
		var resp types.CalculateResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			s.metrics.IncrementCacheHit()
			s.logger.CacheLogger("hit", key, true, s.cache.Size())
			s.recordCalculation(ctx, resp.Profile, risk.Outcome(nil), time.Since(start), true)

			c.Header(cache.HeaderCache, "HIT")
			c.Data(http.StatusOK, jsonContentType, cached)
			return
		}
		s.cache.Delete(key)
	}

	s.metrics.IncrementCacheMiss()
	s.logger.CacheLogger("miss", key, false, s.cache.Size())
	c.Header(cache.HeaderCache, "MISS")

	var req types.CalculateRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid_request", "Request body must be a JSON calculator form", nil, err))
		return
	}

	res, err := s.calculator.Calculate(ctx, req.RawInputs(), req.Sex, req.Race)
	s.recordCalculation(ctx, profileLabel(req, res, err), risk.Outcome(err), time.Since(start), false)
	if err != nil {
		_ = c.Error(apperrors.FromRiskError(err))
		return
	}

	payload, err := json.Marshal(types.NewCalculateResponse(res))
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to encode risk result", err))
		return
	}

	// only successful results are cached
	s.cache.Set(key, payload)
	s.logger.CacheLogger("store", key, false, s.cache.Size())
	c.Data(http.StatusOK, jsonContentType, payload)
}

func (s *server) recordCalculation(ctx context.Context, profile, outcome string, d time.Duration, cacheHit bool) {
	s.metrics.RecordCalculation(profile, outcome, d)
	s.logger.CalculationLogger(profile, outcome, d, cacheHit)
	if s.usage != nil {
		s.usage.Record(ctx, profile, outcome, d)
	}
}

// profileLabel names the profile for metrics even when the calculation failed
func profileLabel(req types.CalculateRequest, res risk.Result, err error) string {
	if err == nil {
		return res.Profile.String()
	}
	if p, perr := risk.ParseProfile(req.Sex, req.Race); perr == nil {
		return p.String()
	}
	return "unknown"
}

func (s *server) handleCreateSession(c *gin.Context) {
	session, err := s.sessions.Issue()
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to start chat session", err))
		return
	}

	s.logger.ChatLogger("session_started", session.ID, 0)

	c.JSON(http.StatusCreated, types.SessionResponse{
		SessionID: session.ID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// requireChatSession authenticates the bearer token and stores its session id
func (s *server) requireChatSession(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Missing chat session token", nil))
		c.Abort()
		return
	}

	sessionID, err := s.sessions.Validate(token)
	if err != nil {
		s.logger.SecurityLogger("invalid_chat_token", c.ClientIP(), c.GetHeader("User-Agent"), nil)
		_ = c.Error(apperrors.FromChatError(err))
		c.Abort()
		return
	}

	c.Set(ratelimit.ChatSessionKey, sessionID)
	c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (s *server) handleListMessages(c *gin.Context) {
	sessionID := c.GetString(ratelimit.ChatSessionKey)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > chat.MaxHistoryLimit {
			_ = c.Error(apperrors.NewValidationError("invalid_limit",
				"limit must be an integer between 1 and "+strconv.Itoa(chat.MaxHistoryLimit),
				map[string]string{"limit": raw}, err))
			return
		}
		limit = n
	}

	msgs, err := s.chat.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		_ = c.Error(apperrors.FromChatError(err))
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}

	s.logger.ChatLogger("history_listed", sessionID, len(msgs))
	c.JSON(http.StatusOK, types.MessagesResponse{SessionID: sessionID, Messages: msgs})
}

func (s *server) handleSendMessage(c *gin.Context) {
	sessionID := c.GetString(ratelimit.ChatSessionKey)

	var req types.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid_request", "Request body must be a JSON message", nil, err))
		return
	}

	if err := security.ValidateText(req.Text); err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid_characters", "Message contains characters that cannot be stored", nil, err))
		return
	}

	msg, err := s.chat.Send(c.Request.Context(), sessionID, security.SanitizeText(req.Text))
	if err != nil {
		_ = c.Error(apperrors.FromChatError(err))
		return
	}

	s.metrics.IncrementChatMessages()
	s.logger.ChatLogger("message_sent", sessionID, 1)
	c.JSON(http.StatusCreated, msg)
}
