package team

import "errors"

// Domain errors for the team module.
var (
	// Team errors
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameRequired = errors.New("team name required")
	ErrTeamLimitReached = errors.New("team limit reached for user")

	// Member errors
	ErrMemberNotFound    = errors.New("member not found")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrMemberLimitReached = errors.New("team member limit reached")
	ErrCannotChangeOwner = errors.New("cannot change owner role")
	ErrCannotRemoveOwner = errors.New("cannot remove team owner")
	ErrInvalidRole       = errors.New("invalid role")

	// Invitation errors
	ErrInvitationNotFound         = errors.New("invitation not found")
	ErrInvitationExpired          = errors.New("invitation has expired")
	ErrInvitationAlreadyProcessed = errors.New("invitation has already been processed")
	ErrInvitationAlreadyPending   = errors.New("invitation already pending for this email")
	ErrInvitationNotForYou        = errors.New("invitation is not for you")
)
