package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catometrics/server/internal/domain/admin"
	"github.com/catometrics/server/internal/domain/auth"
	"github.com/catometrics/server/internal/domain/authz"
	"github.com/catometrics/server/internal/domain/dashboard"
	"github.com/catometrics/server/internal/domain/team"
	"github.com/catometrics/server/internal/shared/response"
)

// writeAuthzError maps gate errors to HTTP responses. A storage fault
// during an authorization check is a 500, never a silent deny or allow.
func writeAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Unauthorized(c, "")
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(c, "")
	case errors.Is(err, authz.ErrInvalidRole):
		response.BadRequest(c, "invalid role")
	default:
		response.InternalError(c, "")
	}
}

var authErrorMappings = []response.ErrorMapping{
	{Err: auth.ErrEmailAlreadyExists, Status: http.StatusConflict, Code: "email_exists"},
	{Err: auth.ErrPasswordRequired, Status: http.StatusBadRequest, Code: "password_required"},
	{Err: auth.ErrPasswordTooShort, Status: http.StatusBadRequest, Code: "password_too_short"},
	{Err: auth.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "invalid_credentials"},
	{Err: auth.ErrAccountDisabled, Status: http.StatusForbidden, Code: "account_disabled"},
	{Err: auth.ErrRateLimited, Status: http.StatusTooManyRequests, Code: "rate_limited"},
	{Err: auth.ErrInvalidToken, Status: http.StatusUnauthorized, Code: "invalid_token"},
	{Err: auth.ErrTokenExpired, Status: http.StatusUnauthorized, Code: "token_expired"},
	{Err: auth.ErrTokenRevoked, Status: http.StatusUnauthorized, Code: "token_revoked"},
	{Err: auth.ErrSessionInvalidated, Status: http.StatusUnauthorized, Code: "session_invalidated"},
	{Err: auth.ErrUserNotFound, Status: http.StatusNotFound, Code: "user_not_found"},
}

var teamErrorMappings = []response.ErrorMapping{
	{Err: team.ErrTeamNotFound, Status: http.StatusNotFound, Code: "team_not_found"},
	{Err: team.ErrTeamNameRequired, Status: http.StatusBadRequest, Code: "team_name_required"},
	{Err: team.ErrTeamLimitReached, Status: http.StatusUnprocessableEntity, Code: "team_limit_reached"},
	{Err: team.ErrMemberNotFound, Status: http.StatusNotFound, Code: "member_not_found"},
	{Err: team.ErrAlreadyMember, Status: http.StatusConflict, Code: "already_member"},
	{Err: team.ErrMemberLimitReached, Status: http.StatusUnprocessableEntity, Code: "member_limit_reached"},
	{Err: team.ErrCannotChangeOwner, Status: http.StatusUnprocessableEntity, Code: "cannot_change_owner"},
	{Err: team.ErrCannotRemoveOwner, Status: http.StatusUnprocessableEntity, Code: "cannot_remove_owner"},
	{Err: team.ErrInvalidRole, Status: http.StatusBadRequest, Code: "invalid_role"},
	{Err: team.ErrInvitationNotFound, Status: http.StatusNotFound, Code: "invitation_not_found"},
	{Err: team.ErrInvitationExpired, Status: http.StatusGone, Code: "invitation_expired"},
	{Err: team.ErrInvitationAlreadyProcessed, Status: http.StatusConflict, Code: "invitation_processed"},
	{Err: team.ErrInvitationAlreadyPending, Status: http.StatusConflict, Code: "invitation_pending"},
	{Err: team.ErrInvitationNotForYou, Status: http.StatusForbidden, Code: "invitation_not_for_you"},
}

var dashboardErrorMappings = []response.ErrorMapping{
	{Err: dashboard.ErrDashboardNotFound, Status: http.StatusNotFound, Code: "dashboard_not_found"},
	{Err: dashboard.ErrNameRequired, Status: http.StatusBadRequest, Code: "dashboard_name_required"},
	{Err: dashboard.ErrInvalidURL, Status: http.StatusBadRequest, Code: "invalid_dashboard_url"},
	{Err: dashboard.ErrDashboardLimitReached, Status: http.StatusUnprocessableEntity, Code: "dashboard_limit_reached"},
}

var adminErrorMappings = []response.ErrorMapping{
	{Err: admin.ErrUserNotFound, Status: http.StatusNotFound, Code: "user_not_found"},
	{Err: auth.ErrUserNotFound, Status: http.StatusNotFound, Code: "user_not_found"},
	{Err: admin.ErrCannotRevokeSelf, Status: http.StatusUnprocessableEntity, Code: "cannot_revoke_self"},
	{Err: admin.ErrInvalidSettings, Status: http.StatusBadRequest, Code: "invalid_settings"},
}
