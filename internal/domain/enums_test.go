package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRoleWireEncoding(t *testing.T) {
	b, err := json.Marshal(RoleSuperAdmin)
	assert.NoError(t, err)
	assert.Equal(t, `"superadmin"`, string(b))
}

func TestParseAdminRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseAdminRole("admin"))
	assert.Equal(t, RoleSuperAdmin, ParseAdminRole("superadmin"))
	assert.Equal(t, RoleUser, ParseAdminRole("bogus"))
	assert.Equal(t, RoleUser, ParseAdminRole(""))
}

func TestBookingStatusIsActive(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingActive} {
		assert.True(t, s.IsActive(), "%s should be active", s)
	}
	for _, s := range []BookingStatus{BookingCompleted, BookingCancelled, BookingExpired, BookingNoShow} {
		assert.False(t, s.IsActive(), "%s should not be active", s)
	}
}

func TestSlotStatusSnakeCase(t *testing.T) {
	b, err := json.Marshal(SlotMaintenance)
	assert.NoError(t, err)
	assert.Equal(t, `"maintenance"`, string(b))
}
