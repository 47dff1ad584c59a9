package types

import "testing"

func TestCanManage(t *testing.T) {
	cases := []struct {
		actor  string
		target string
		want   bool
	}{
		{RoleSuperUser, RoleAdmin, true},
		{RoleSuperUser, RoleMeterManager, true},
		{RoleSuperUser, RoleSuperUser, false},
		{RoleAdmin, RoleSiteManager, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleSuperUser, false},
		{RoleSiteManager, RoleUploader, true},
		{RoleSiteManager, RoleViewer, true},
		{RoleSiteManager, RoleMeterManager, false},
		{RoleUploader, RoleViewer, false},
		{RoleViewer, RoleViewer, false},
		{RoleMeterManager, RoleUploader, false},
		{"unknown", RoleViewer, false},
	}
	for _, tc := range cases {
		if got := CanManage(tc.actor, tc.target); got != tc.want {
			t.Errorf("CanManage(%q, %q) = %v, want %v", tc.actor, tc.target, got, tc.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleSuperUser, RoleAdmin, RoleSiteManager, RoleUploader, RoleViewer, RoleMeterManager} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	for _, role := range []string{"", "owner", "SUPER_USER"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true", role)
		}
	}
}
