package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

// quietPaths are health probes, logged at debug so they do not flood info.
var quietPaths = map[string]bool{"/ping": true}

// RequestLogger tags each request with an id (kept from X-Request-Id when the
// caller sent one) and logs one line when the handler returns. For chat
// streams that is when the stream ends, so latency covers the whole relay.
func RequestLogger(l logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Set("request_id", reqID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		entry := l.WithFields(logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       route,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
			"ip":         c.ClientIP(),
		})
		if userID, ok := c.Get("user_id"); ok {
			entry = entry.WithField("user_id", userID)
		}
		if slug := c.Param("slug"); slug != "" {
			entry = entry.WithField("agent", slug)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		entry.Log(levelFor(status, len(c.Errors) > 0, quietPaths[route]), "request")
	}
}

func levelFor(status int, hasErrors, quiet bool) logrus.Level {
	switch {
	case status >= 500:
		return logrus.ErrorLevel
	case status >= 400, hasErrors:
		return logrus.WarnLevel
	case quiet:
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
