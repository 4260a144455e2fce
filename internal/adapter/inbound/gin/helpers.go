// Package gin implements the inbound HTTP adapters.
package gin

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/catometrics/server/internal/domain/authz"
	"github.com/catometrics/server/internal/shared/middleware"
	"github.com/catometrics/server/internal/shared/response"
)

// currentActor returns the authenticated actor for the request. It
// writes a 401 and returns false if the session is missing.
func currentActor(c *gin.Context) (authz.Actor, bool) {
	actor := middleware.GetActor(c)
	if actor.IsZero() {
		response.Unauthorized(c, "")
		return authz.Actor{}, false
	}
	return actor, true
}

// uuidParam parses a UUID path parameter. It writes a 400 and returns
// false on malformed input.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
