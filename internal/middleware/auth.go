package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

// AuthGuard lets the request through when the actor set by UserAuth holds
// one of allowedRoles. It must run after UserAuth.
func AuthGuard(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.UserID.IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No access token provided"})
			return
		}

		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if actor.Role == r {
					match = true
					break
				}
			}
			if !match {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
				return
			}
		}

		c.Next()
	}
}

func AdminAuth() gin.HandlerFunc {
	return AuthGuard(models.RoleAdmin)
}
