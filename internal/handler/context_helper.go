package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/middleware"
	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentClaims(c)
}

// actorFromContext builds the write actor from the authenticated identity.
func actorFromContext(c *gin.Context) (dto.Actor, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		claims := claimsFromContext(c)
		if claims == nil {
			return dto.Actor{}, appErrors.ErrUnauthorized
		}
		return dto.Actor{ID: claims.UserID, Role: claims.Role}, nil
	}
	return dto.Actor{ID: user.ID, Name: user.Name, Role: user.Role}, nil
}

func bindError(err error, message string) error {
	return appErrors.Validation(err, message)
}
