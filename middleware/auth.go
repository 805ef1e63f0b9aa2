package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"attendance-backend/models"
	"attendance-backend/services"
	"attendance-backend/utils"
)

const actorKey = "actor"

// RequireAuth validates the bearer token and stores the resulting actor on
// the context for handlers.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.JSONError(c, http.StatusUnauthorized, "authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Set(actorKey, services.AuthenticatedActor{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RequireRole restricts a route to the given roles; must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "insufficient role")
		c.Abort()
	}
}

// GetActor returns the authenticated actor stored by RequireAuth.
func GetActor(c *gin.Context) (services.AuthenticatedActor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.AuthenticatedActor{}, false
	}
	actor, ok := v.(services.AuthenticatedActor)
	return actor, ok
}
