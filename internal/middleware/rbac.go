package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-planner-api/internal/models"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
	"github.com/noah-isme/intervention-planner-api/pkg/response"
)

// RequireRoles lets the request through only when the token carries one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not permitted to modify schedules"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CanWrite allows the roles that may change schedules and calendars.
func CanWrite() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleInterventionist)
}
