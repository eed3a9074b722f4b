package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/middleware"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext converts the authenticated claims into an Actor.
func actorFromContext(c *gin.Context) (models.Actor, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	actor, ok := models.NewActor(claims.UserID, claims.Role)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unsupported role")
	}
	return actor, nil
}

func bindError(err error, message string) error {
	return appErrors.Validation(err, message)
}
