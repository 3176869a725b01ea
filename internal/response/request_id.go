package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxInboundRequestIDLen caps client-supplied request IDs so arbitrary
// header content cannot bloat logs.
const maxInboundRequestIDLen = 64

// RequestIDMiddleware attaches a request ID to every request, reusing a
// client-supplied X-Request-ID when present so console calls can be traced
// end to end.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if len(reqID) > maxInboundRequestIDLen {
			reqID = reqID[:maxInboundRequestIDLen]
		}
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
