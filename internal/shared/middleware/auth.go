package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/catometrics/server/internal/domain/auth"
	"github.com/catometrics/server/internal/domain/authz"
	"github.com/catometrics/server/internal/shared/response"
)

const actorKey = "actor"

// RequireAuth returns a middleware that verifies the bearer token and
// attaches the resulting actor to the request context. Requests without
// a valid token are rejected with 401.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(actorKey, authz.NewActor(claims.UserID, claims.Name, claims.Email, claims.IsSuperAdmin))
		c.Next()
	}
}

// RequireSuperAdmin returns a middleware that re-verifies the platform
// superadmin privilege against the user record. It must run after
// RequireAuth.
func RequireSuperAdmin(gate *authz.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if _, err := gate.RequireSuperAdmin(c.Request.Context(), actor); err != nil {
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				response.Unauthorized(c, "")
			case errors.Is(err, authz.ErrForbidden):
				response.Forbidden(c, "superadmin required")
			default:
				response.InternalError(c, "")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor, or the zero actor when the
// request carries no session.
func GetActor(c *gin.Context) authz.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(authz.Actor); ok {
			return actor
		}
	}
	return authz.Actor{}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
