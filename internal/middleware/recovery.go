package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery converts panics into 500 responses. A panic caused by the
// client going away is logged without a response; there is no one left
// to answer.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("Request panic recovered")

				if isBrokenPipe(err) {
					c.Abort()
					return
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Code:    http.StatusInternalServerError,
					Message: "Internal server error",
					TraceID: c.GetString(ContextRequestID),
				})
			}
		}()
		c.Next()
	}
}

func isBrokenPipe(err interface{}) bool {
	e, ok := err.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(e, &opErr) {
		return false
	}
	var syscallErr *os.SyscallError
	return errors.As(opErr.Err, &syscallErr)
}
