package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/catometrics/server/internal/domain/authz"
	"github.com/catometrics/server/internal/domain/team"
	"github.com/catometrics/server/internal/model"
	"github.com/catometrics/server/internal/shared/response"
)

// TeamHandler serves team, membership and invitation endpoints.
type TeamHandler struct {
	service     *team.Service
	gate        *authz.Gate
	requireAuth gin.HandlerFunc
}

// NewTeamHandler creates a new team HTTP handler.
func NewTeamHandler(service *team.Service, gate *authz.Gate, requireAuth gin.HandlerFunc) *TeamHandler {
	return &TeamHandler{service: service, gate: gate, requireAuth: requireAuth}
}

// RegisterRoutes registers team routes.
func (h *TeamHandler) RegisterRoutes(r *gin.RouterGroup) {
	teams := r.Group("/teams", h.requireAuth)
	{
		teams.POST("", h.Create)
		teams.GET("", h.List)
		teams.GET("/:id", h.Get)
		teams.PUT("/:id", h.Update)
		teams.DELETE("/:id", h.Delete)

		teams.GET("/:id/members", h.ListMembers)
		teams.PUT("/:id/members/:userId", h.ChangeRole)
		teams.DELETE("/:id/members/:userId", h.RemoveMember)

		teams.POST("/:id/invitations", h.CreateInvitation)
		teams.GET("/:id/invitations", h.ListInvitations)
		teams.DELETE("/:id/invitations/:invitationId", h.RevokeInvitation)
	}

	invitations := r.Group("/invitations", h.requireAuth)
	{
		invitations.GET("", h.ListMyInvitations)
		invitations.POST("/:token/accept", h.AcceptInvitation)
		invitations.POST("/:token/reject", h.RejectInvitation)
	}
}

// requireRole runs the team-role check and writes the error response on
// denial.
func (h *TeamHandler) requireRole(c *gin.Context, teamID uuid.UUID, minimum model.TeamRole) (*authz.Grant, bool) {
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

func (h *TeamHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	t, err := h.service.CreateTeam(c.Request.Context(), actor.UserID, req.Name, req.Description, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (h *TeamHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var page model.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page.DefaultPagination()

	teams, total, err := h.service.ListTeams(c.Request.Context(), actor.UserID, page)
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, model.NewPaginatedResponse(teams, total, page.Page, page.PageSize))
}

func (h *TeamHandler) Get(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, ok := h.requireRole(c, teamID, model.TeamRoleViewer); !ok {
		return
	}

	t, err := h.service.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (h *TeamHandler) Update(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	t, err := h.service.UpdateTeam(c.Request.Context(), grant.Actor.UserID, teamID, req.Name, req.Description, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (h *TeamHandler) Delete(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleOwner)
	if !ok {
		return
	}

	if err := h.service.DeleteTeam(c.Request.Context(), grant.Actor.UserID, teamID, c.ClientIP()); err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "team deleted"})
}

func (h *TeamHandler) ListMembers(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, ok := h.requireRole(c, teamID, model.TeamRoleViewer); !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), teamID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *TeamHandler) ChangeRole(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	role, valid := model.ParseTeamRole(req.Role)
	if !valid {
		response.BadRequest(c, "invalid role")
		return
	}

	err := h.service.ChangeRole(c.Request.Context(), grant.Actor.UserID, teamID, userID, role, grant.TeamRole, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	// Leaving a team only needs membership; removing someone else is an
	// admin action.
	minimum := model.TeamRoleAdmin
	if actor.UserID == userID {
		minimum = model.TeamRoleViewer
	}
	grant, ok := h.requireRole(c, teamID, minimum)
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), grant.Actor.UserID, teamID, userID, c.ClientIP()); err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func (h *TeamHandler) CreateInvitation(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	role, valid := model.ParseTeamRole(req.Role)
	if !valid {
		response.BadRequest(c, "invalid role")
		return
	}

	inv, err := h.service.CreateInvitation(c.Request.Context(), grant.Actor.UserID, teamID, req.Email, role, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

func (h *TeamHandler) ListInvitations(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, ok := h.requireRole(c, teamID, model.TeamRoleAdmin); !ok {
		return
	}

	invitations, err := h.service.ListInvitations(c.Request.Context(), teamID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func (h *TeamHandler) RevokeInvitation(c *gin.Context) {
	teamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	invitationID, ok := uuidParam(c, "invitationId")
	if !ok {
		return
	}
	grant, ok := h.requireRole(c, teamID, model.TeamRoleAdmin)
	if !ok {
		return
	}

	err := h.service.RevokeInvitation(c.Request.Context(), grant.Actor.UserID, teamID, invitationID, c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invitation revoked"})
}

func (h *TeamHandler) ListMyInvitations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	invitations, err := h.service.ListInvitationsForEmail(c.Request.Context(), actor.Email)
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func (h *TeamHandler) AcceptInvitation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	inv, err := h.service.AcceptInvitation(c.Request.Context(), actor.UserID, actor.Email, c.Param("token"), c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, inv)
}

func (h *TeamHandler) RejectInvitation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	err := h.service.RejectInvitation(c.Request.Context(), actor.UserID, actor.Email, c.Param("token"), c.ClientIP())
	if err != nil {
		response.HandleErrorWithDefault(c, err, teamErrorMappings)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invitation rejected"})
}
