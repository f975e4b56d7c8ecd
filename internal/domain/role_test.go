package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		name       string
		level      int
		admin      bool
		manager    bool
		editor     bool
		auxEditor  bool
		support    bool
		hasSupport bool
		viewer     bool
		canEdit    bool
	}{
		{name: "admin", level: LevelAdmin, admin: true, hasSupport: true, canEdit: true},
		{name: "manager_user", level: LevelManagerUser, manager: true, support: true, hasSupport: true},
		{name: "editor", level: LevelEditor, editor: true, support: true, hasSupport: true, canEdit: true},
		{name: "aux_editor", level: LevelAuxEditor, auxEditor: true, support: true, hasSupport: true, canEdit: true},
		{name: "support", level: LevelSupport, support: true, hasSupport: true},
		{name: "viewer", level: LevelViewer, viewer: true, hasSupport: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			role := Role{Name: tc.name, Level: tc.level}
			assert.Equal(t, tc.admin, role.IsAdmin())
			assert.Equal(t, tc.manager, role.IsManagerUser())
			assert.Equal(t, tc.editor, role.IsEditor())
			assert.Equal(t, tc.auxEditor, role.IsAuxEditor())
			assert.Equal(t, tc.support, role.IsSupport())
			assert.Equal(t, tc.hasSupport, role.HasSupport())
			assert.Equal(t, tc.viewer, role.IsViewer())
			assert.Equal(t, tc.canEdit, role.CanEdit())
		})
	}
}

func TestRoleUnknownLevelGrantsNothing(t *testing.T) {
	role := Role{Name: "ghost", Level: 42}
	for _, c := range []Capability{CapAdmin, CapManagerUser, CapEditor, CapAuxEditor, CapSupport, CapHasSupport, CapViewer, CapEdit} {
		assert.False(t, role.Has(c))
	}
}

func TestUserCapabilityORsAcrossRoles(t *testing.T) {
	user := User{Roles: []Role{
		{Name: "viewer", Level: LevelViewer},
		{Name: "admin", Level: LevelAdmin},
	}}

	assert.True(t, user.IsAdmin())
	assert.True(t, user.IsViewer())
	assert.True(t, user.CanEdit())
	assert.True(t, user.HasSupport())
	assert.False(t, user.IsSupport(), "neither role grants the support capability")
}

func TestUserWithoutRolesHasNoCapabilities(t *testing.T) {
	var user User
	assert.False(t, user.IsAdmin())
	assert.False(t, user.HasSupport())
	assert.False(t, user.CanEdit())
}
