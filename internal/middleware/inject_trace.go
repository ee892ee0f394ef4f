// Package middleware contains the gin middleware chain: tracing, request
// logging, path sanitation, payload validation, the access guard and the
// error normalizer.
package middleware

import (
	"github.com/gin-gonic/gin"

	"camphub/internal/utils"
)

// InjectTrace assigns every request a trace id and echoes it in a header.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
