package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/catometrics/server/internal/domain/authz"
	"github.com/catometrics/server/internal/domain/dashboard"
	"github.com/catometrics/server/internal/model"
	"github.com/catometrics/server/internal/shared/response"
)

// DashboardHandler serves per-team dashboard endpoints.
type DashboardHandler struct {
	service     *dashboard.Service
	gate        *authz.Gate
	requireAuth gin.HandlerFunc
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(service *dashboard.Service, gate *authz.Gate, requireAuth gin.HandlerFunc) *DashboardHandler {
	return &DashboardHandler{service: service, gate: gate, requireAuth: requireAuth}
}

// RegisterRoutes registers dashboard routes under the team resource.
func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	dashboards := r.Group("/teams/:id/dashboards", h.requireAuth)
	{
		dashboards.POST("", h.Create)
		dashboards.GET("", h.List)
		dashboards.GET("/:dashboardId", h.Get)
		dashboards.PUT("/:dashboardId", h.Update)
		dashboards.DELETE("/:dashboardId", h.Delete)
	}
}

func (h *DashboardHandler) requireRole(c *gin.Context, teamID uuid.UUID, minimum model.TeamRole) (*authz.Grant, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return nil, false
	}
	grant, err := h.gate.RequireTeamRole(c.Request.Context(), actor, teamID, minimum)
	if err != nil {
		writeAuthzError(c, err)
		return nil, false
	}
	return grant, true
}

func (h *DashboardHandler) Create(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	var in dashboard.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	d, err := h.service.Create(c.Request.Context(), grant.Actor.UserID, teamID, in, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, dashboardErrorMappings)
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *DashboardHandler) List(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, ok := h.requireRole(c, teamID, model.TeamRoleViewer); !ok {
		return
	}

	dashboards, err := h.service.ListByTeam(c.Request.Context(), teamID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, dashboardErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboards": dashboards})
}

func (h *DashboardHandler) Get(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	dashboardID, ok := uuidParam(c, "dashboardId")
	if !ok {
		return
	}
	if _, ok := h.requireRole(c, teamID, model.TeamRoleViewer); !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), teamID, dashboardID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, dashboardErrorMappings)
		return
	}

	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) Update(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	dashboardID, ok := uuidParam(c, "dashboardId")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	var in dashboard.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	d, err := h.service.Update(c.Request.Context(), grant.Actor.UserID, teamID, dashboardID, in, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, dashboardErrorMappings)
		return
	}

	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) Delete(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	dashboardID, ok := uuidParam(c, "dashboardId")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), grant.Actor.UserID, teamID, dashboardID, c.ClientIP()); err != nil {
		response.HandleErrorWithDefault(c, err, dashboardErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dashboard deleted"})
}
