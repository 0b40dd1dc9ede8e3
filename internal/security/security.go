package security

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apperrors "github.com/mohammedqas189/ASCVD-Calculator/internal/errors"
)

var (
	ErrInvalidCharacters = errors.New("text contains invalid characters")
	ErrInvalidEncoding   = errors.New("text contains invalid UTF-8 encoding")
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxBodyBytes   int64         `json:"max_body_bytes"`
	AllowedOrigins []string      `json:"allowed_origins"`
	RequestTimeout time.Duration `json:"request_timeout"`
	EnableHSTS     bool          `json:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxBodyBytes:   16 << 10,
		AllowedOrigins: []string{"http://localhost:8081", "http://localhost:19006"},
		RequestTimeout: 30 * time.Second,
	}
}

// SecurityMiddleware bundles the request hardening middleware
type SecurityMiddleware struct {
	config SecurityConfig
}

func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultSecurityConfig().MaxBodyBytes
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultSecurityConfig().RequestTimeout
	}
	return &SecurityMiddleware{config: config}
}

func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// ValidateText rejects text that cannot be stored or displayed safely
func ValidateText(text string) error {
	if !utf8.ValidString(text) {
		return ErrInvalidEncoding
	}
	for _, r := range text {
		if r == 0 || (unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r') {
			return ErrInvalidCharacters
		}
	}
	return nil
}

var (
	scriptPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacesPattern  = regexp.MustCompile(`[ \t]+`)
)

// SanitizeText strips markup from chat text and collapses runs of spaces
func SanitizeText(text string) string {
	text = scriptPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = spacesPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ValidateContentType requires JSON bodies on requests that carry one
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
		c.Next()
		return
	}
	if c.Request.ContentLength == 0 {
		c.Next()
		return
	}

	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || mediaType != "application/json" {
		appErr := apperrors.NewValidationError("unsupported_media_type", "Content-Type must be application/json", nil, err)
		appErr.HTTPStatus = http.StatusUnsupportedMediaType
		appErr.RequestID = c.GetString("request_id")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
		return
	}

	c.Next()
}

// LimitBody caps request body size
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if c.Request.ContentLength > sm.config.MaxBodyBytes {
		appErr := apperrors.NewValidationError("body_too_large",
			fmt.Sprintf("Request body exceeds %d bytes", sm.config.MaxBodyBytes), nil, nil)
		appErr.HTTPStatus = http.StatusRequestEntityTooLarge
		appErr.RequestID = c.GetString("request_id")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	c.Next()
}

// RequestTimeout bounds the request context
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORS builds the gin-contrib/cors middleware. An empty list or "*" allows
// every origin without credentials.
func (sm *SecurityMiddleware) CORS() gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	origins := make([]string, 0, len(sm.config.AllowedOrigins))
	allowAll := len(sm.config.AllowedOrigins) == 0
	for _, o := range sm.config.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			origins = append(origins, o)
		}
	}

	if allowAll || len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}

	return cors.New(config)
}
