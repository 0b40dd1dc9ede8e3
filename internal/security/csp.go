package security

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

	// swagger-ui ships inline bootstrap script and styles
	docsPolicy = "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'"
)

// CSPMiddleware sets a deny-all policy for API responses and a relaxed one for
// paths under docsPrefix.
func CSPMiddleware(docsPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if docsPrefix != "" && strings.HasPrefix(c.Request.URL.Path, docsPrefix) {
			c.Header("Content-Security-Policy", docsPolicy)
		} else {
			c.Header("Content-Security-Policy", apiPolicy)
		}
		c.Next()
	}
}
