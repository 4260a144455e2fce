package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeamRoleOrdering(t *testing.T) {
	ordered := []TeamRole{TeamRoleViewer, TeamRoleMember, TeamRoleAdmin, TeamRoleOwner}

	for i, lower := range ordered {
		for j, higher := range ordered {
			if j >= i {
				assert.True(t, higher.IsAtLeast(lower), "%s should satisfy %s", higher, lower)
			} else {
				assert.False(t, higher.IsAtLeast(lower), "%s should not satisfy %s", higher, lower)
			}
		}
	}
}

func TestTeamRoleUnknownRanksBelowEverything(t *testing.T) {
	unknown := TeamRole("ROOT")
	assert.False(t, unknown.IsValid())
	assert.False(t, unknown.IsAtLeast(TeamRoleViewer))
	assert.True(t, TeamRoleViewer.IsAtLeast(unknown))
}

func TestTeamRoleCanAssign(t *testing.T) {
	// OWNER is never assignable, by anyone.
	assert.False(t, TeamRoleOwner.CanAssign(TeamRoleOwner))
	assert.False(t, TeamRoleAdmin.CanAssign(TeamRoleOwner))

	assert.True(t, TeamRoleOwner.CanAssign(TeamRoleAdmin))
	assert.True(t, TeamRoleAdmin.CanAssign(TeamRoleViewer))
	assert.False(t, TeamRoleMember.CanAssign(TeamRoleViewer))
	assert.False(t, TeamRoleViewer.CanAssign(TeamRoleViewer))
	assert.False(t, TeamRoleOwner.CanAssign(TeamRole("ROOT")))
}

func TestInvitationEffectiveStatus(t *testing.T) {
	t.Run("pending past deadline reads as expired", func(t *testing.T) {
		inv := &TeamInvitation{
			Status:    InvitationStatusPending,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		assert.Equal(t, InvitationStatusExpired, inv.EffectiveStatus())
		assert.False(t, inv.IsPending())
	})

	t.Run("pending before deadline stays pending", func(t *testing.T) {
		inv := &TeamInvitation{
			Status:    InvitationStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.Equal(t, InvitationStatusPending, inv.EffectiveStatus())
		assert.True(t, inv.IsPending())
	})

	t.Run("terminal statuses are unaffected by the deadline", func(t *testing.T) {
		inv := &TeamInvitation{
			Status:    InvitationStatusAccepted,
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		assert.Equal(t, InvitationStatusAccepted, inv.EffectiveStatus())
	})
}

func TestInvitationStatusIsTerminal(t *testing.T) {
	assert.False(t, InvitationStatusPending.IsTerminal())
	for _, s := range []InvitationStatus{
		InvitationStatusAccepted, InvitationStatusRejected,
		InvitationStatusRevoked, InvitationStatusExpired,
	} {
		assert.True(t, s.IsTerminal(), s)
	}
}
