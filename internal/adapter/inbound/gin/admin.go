package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catometrics/server/internal/domain/admin"
	"github.com/catometrics/server/internal/model"
	"github.com/catometrics/server/internal/shared/response"
)

// AdminHandler serves the superadmin console endpoints. Every route is
// behind the superadmin middleware, which re-reads the privilege from
// the user record on each request.
type AdminHandler struct {
	service           *admin.Service
	requireAuth       gin.HandlerFunc
	requireSuperAdmin gin.HandlerFunc
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(service *admin.Service, requireAuth, requireSuperAdmin gin.HandlerFunc) *AdminHandler {
	return &AdminHandler{
		service:           service,
		requireAuth:       requireAuth,
		requireSuperAdmin: requireSuperAdmin,
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	adminGroup := r.Group("/admin", h.requireAuth, h.requireSuperAdmin)
	{
		adminGroup.GET("/users", h.ListUsers)
		adminGroup.GET("/users/:id", h.GetUser)
		adminGroup.PUT("/users/:id/status", h.SetUserStatus)
		adminGroup.PUT("/users/:id/role", h.SetUserRole)

		adminGroup.GET("/teams", h.ListTeams)
		adminGroup.GET("/dashboards", h.ListDashboards)
		adminGroup.GET("/audit-logs", h.ListAuditLogs)

		adminGroup.GET("/settings", h.GetSettings)
		adminGroup.PUT("/settings", h.UpdateSettings)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter model.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	filter.DefaultPagination()

	users, total, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	responses := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	c.JSON(http.StatusOK, model.NewPaginatedResponse(responses, total, filter.Page, filter.PageSize))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, u.ToResponse())
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.SetActive(c.Request.Context(), actor.UserID, userID, *req.IsActive, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, u.ToResponse())
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsSuperAdmin *bool `json:"is_super_admin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.SetSuperAdmin(c.Request.Context(), actor.UserID, userID, *req.IsSuperAdmin, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, u.ToResponse())
}

func (h *AdminHandler) ListTeams(c *gin.Context) {
	var page model.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page.DefaultPagination()

	teams, total, err := h.service.ListTeams(c.Request.Context(), page)
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, model.NewPaginatedResponse(teams, total, page.Page, page.PageSize))
}

func (h *AdminHandler) ListDashboards(c *gin.Context) {
	var filter model.DashboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	filter.DefaultPagination()

	dashboards, total, err := h.service.ListDashboards(c.Request.Context(), filter)
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, model.NewPaginatedResponse(dashboards, total, filter.Page, filter.PageSize))
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var filter model.AuditLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	filter.DefaultPagination()

	logs, total, err := h.service.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, model.NewPaginatedResponse(logs, total, filter.Page, filter.PageSize))
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in admin.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), actor.UserID, in, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, adminErrorMappings)
		return
	}

	c.JSON(http.StatusOK, settings)
}
