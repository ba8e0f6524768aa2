package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig controls the Cache-Control header for catalog responses.
type CacheConfig struct {
	// MaxAge is the freshness lifetime in seconds.
	MaxAge int

	// Public permits shared caches to store the response.
	Public bool

	// StaleIfError is how long, in seconds, a cache may keep serving
	// an expired response while the API is unreachable.
	StaleIfError int
}

// DefaultCacheConfig is tuned for the parameter catalog. Reference
// ranges and pattern rules are fixed for the lifetime of the process,
// and nothing in them is patient specific, so shared caches may hold
// them for an hour and fall back to a stale copy for a day when the
// API is down.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:       3600,
		Public:       true,
		StaleIfError: 86400,
	}
}

// Cache sets Cache-Control on GET responses. Other methods get
// no-store so a cached response can never mask a mutation.
func Cache(config CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		directives := []string{"public"}
		if !config.Public {
			directives[0] = "private"
		}
		if config.MaxAge > 0 {
			directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
		}
		if config.StaleIfError > 0 {
			directives = append(directives, "stale-if-error="+strconv.Itoa(config.StaleIfError))
		}

		c.Header("Cache-Control", strings.Join(directives, ", "))
		c.Next()
	}
}
