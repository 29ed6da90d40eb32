package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parkspot/internal/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs every request with logrus and turns panics into a 500.
// Handler errors attached with c.Error are logged with the request.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header(requestIDHeader, reqID)

		defer func() {
			entry := log.WithFields(logrus.Fields{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"query":      c.Request.URL.RawQuery,
				"client_ip":  c.ClientIP(),
				"user_id":    c.GetInt64("user_id"),
				"role":       c.GetString("role"),
				"request_id": reqID,
				"latency":    time.Since(start).String(),
			})

			if recovered := recover(); recovered != nil {
				entry.WithFields(logrus.Fields{
					"panic": fmt.Sprintf("%v", recovered),
					"stack": string(debug.Stack()),
				}).Error("request panicked")
				response.AbortError(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
				return
			}

			entry = entry.WithField("status", c.Writer.Status())
			if len(c.Errors) > 0 {
				entry = entry.WithField("errors", c.Errors.String())
			}

			switch {
			case c.Writer.Status() >= http.StatusInternalServerError:
				entry.Error("request failed")
			case c.Writer.Status() >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
		}()

		c.Next()
	}
}
