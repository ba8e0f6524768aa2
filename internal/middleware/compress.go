package middleware

import (
	"compress/gzip"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressConfig controls response compression.
type CompressConfig struct {
	Level       int
	ExemptPaths []string
}

func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		Level: gzip.DefaultCompression,
		// Prometheus negotiates its own encoding; probes gain nothing.
		ExemptPaths: []string{
			"/metrics",
			"/api/v1/health",
		},
	}
}

type gzipWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	return w.gz.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.gz.Write([]byte(s))
}

// Compress gzips responses for clients that accept it. Every endpoint
// emits JSON, so there is no content type to negotiate.
func Compress(config CompressConfig) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() interface{} {
			gz, _ := gzip.NewWriterLevel(nil, config.Level)
			return gz
		},
	}

	return func(c *gin.Context) {
		for _, path := range config.ExemptPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		defer pool.Put(gz)
		gz.Reset(c.Writer)

		c.Header("Content-Encoding", "gzip")
		c.Writer.Header().Add("Vary", "Accept-Encoding")
		c.Writer = &gzipWriter{c.Writer, gz}
		defer gz.Close()

		c.Next()
	}
}
