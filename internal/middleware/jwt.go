package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
	"github.com/noah-isme/ruwad-api/pkg/logger"
	"github.com/noah-isme/ruwad-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextIdentityKey is the gin context key storing the resolved user.
	ContextIdentityKey = "currentIdentity"
)

// TokenResolver verifies a bearer token and loads its identity.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, *models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token whose user still exists.
func JWT(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		user, claims, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextIdentityKey, user)
		c.Set(logger.ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentClaims returns the claims stored by JWT.
func CurrentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

// CurrentUser returns the identity stored by JWT.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
