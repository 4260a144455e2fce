package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catometrics/server/internal/domain/auth"
	"github.com/catometrics/server/internal/shared/response"
)

// AuthHandler serves registration, login and session endpoints.
type AuthHandler struct {
	service     *auth.Service
	requireAuth gin.HandlerFunc
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(service *auth.Service, requireAuth gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{service: service, requireAuth: requireAuth}
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.requireAuth, h.Logout)
	}
	r.GET("/me", h.requireAuth, h.Me)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		response.HandleErrorWithDefault(c, err, authErrorMappings)
		return
	}

	c.JSON(http.StatusCreated, u.ToResponse())
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, u, err := h.service.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.HandleErrorWithDefault(c, err, authErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.ExpiresAt,
		"user":          u.ToResponse(),
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.HandleErrorWithDefault(c, err, authErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.Logout(c.Request.Context(), actor.UserID, req.RefreshToken, c.ClientIP()); err != nil {
		response.HandleErrorWithDefault(c, err, authErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the persisted user record for the session. The superadmin
// bit in the response comes from the database, not the token claim.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, authErrorMappings)
		return
	}

	c.JSON(http.StatusOK, u.ToResponse())
}
