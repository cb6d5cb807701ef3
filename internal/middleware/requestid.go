package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with an identifier and echoes it in the
// response header. A caller-supplied X-Request-ID is reused only when it is
// a well-formed UUID; anything else is replaced so log correlation fields
// stay bounded and parseable.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}

// RequestIDFromContext returns the identifier RequestID assigned, or the
// empty string when the middleware did not run.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
