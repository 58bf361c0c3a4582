package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
)

const (
	ActorKey  = "actor"
	UserIDKey = "userId"
)

// Authenticator resolves the session cookies of a request.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken, refreshToken string) (auth.Actor, error)
}

// UserAuth resolves the accessToken/refreshToken cookies to an actor and
// injects it, and its userId, into the context.
func UserAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, _ := c.Cookie(auth.AccessCookie)
		refresh, _ := c.Cookie(auth.RefreshCookie)

		actor, err := authn.Authenticate(c.Request.Context(), access, refresh)
		if err != nil {
			kind := apperr.KindOf(err)
			logging.FromContext(c.Request.Context()).Warn("authentication failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(apperr.Status(kind), gin.H{"success": false, "error": apperr.Message(err)})
			return
		}

		c.Set(ActorKey, actor)
		c.Set(UserIDKey, actor.UserID)
		c.Request = c.Request.WithContext(logging.WithLogger(
			c.Request.Context(),
			logging.FromContext(c.Request.Context()).With(zap.String("userId", actor.UserID.Hex())),
		))
		c.Next()
	}
}

// ActorFrom returns the actor stored by UserAuth, or the zero actor.
func ActorFrom(c *gin.Context) auth.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(auth.Actor); ok {
			return actor
		}
	}
	return auth.Actor{}
}
