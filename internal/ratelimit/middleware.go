package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mohammedqas189/ASCVD-Calculator/internal/errors"
)

// ChatSessionKey is the gin context key holding the authenticated chat session id
const ChatSessionKey = "chat_session_id"

// IPRateLimitMiddleware applies the per-IP limit
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			// a limiter failure never blocks the request
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		setHeaders(c, "X-RateLimit", result)

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
			}
			reject(c, result)
			return
		}

		c.Next()
	}
}

// ChatSessionRateLimitMiddleware limits message sends per chat session. It must
// run after the session has been authenticated.
func (rl *RateLimiter) ChatSessionRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(ChatSessionKey)
		if sessionID == "" {
			c.Next()
			return
		}

		result, err := rl.AllowChatSession(c.Request.Context(), sessionID)
		if err != nil {
			slog.Error("Chat rate limit check failed", "session_id", sessionID, "error", err)
			c.Next()
			return
		}

		setHeaders(c, "X-RateLimit-Chat", result)

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitChatBlock()
			}
			reject(c, result)
			return
		}

		c.Next()
	}
}

func setHeaders(c *gin.Context, prefix string, result *Result) {
	c.Header(prefix+"-Limit", strconv.Itoa(result.Limit))
	c.Header(prefix+"-Remaining", strconv.Itoa(result.Remaining))
	c.Header(prefix+"-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func reject(c *gin.Context, result *Result) {
	retryAfter := strconv.Itoa(int(result.RetryAfter.Seconds()))
	c.Header("Retry-After", retryAfter)

	appErr := apperrors.NewRateLimitError(retryAfter)
	appErr.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
}
