package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/odontosys/clinic-api/pkg/errors"
	"github.com/odontosys/clinic-api/pkg/httputil"
)

const HeaderAPIKey = "X-API-Key"

// APIKeyAuth gates requests behind a shared secret carried in the X-API-Key
// header. When no key is configured the middleware lets everything through,
// which keeps local development friction-free but must not survive into
// production.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			httputil.RespondWithError(c, apperrors.Unauthorized("invalid or missing api key", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
