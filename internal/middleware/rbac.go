package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ruwad-api/internal/service"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
	"github.com/noah-isme/ruwad-api/pkg/response"
)

// Authorize checks the caller's role against the policy for op. It must run
// after JWT.
func Authorize(policy *service.AccessPolicy, op service.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := policy.Authorize(claims.Role, op); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
