package types

const (
	RoleSuperUser    = "super_user"
	RoleAdmin        = "admin"
	RoleSiteManager  = "site_manager"
	RoleUploader     = "uploader"
	RoleViewer       = "viewer"
	RoleMeterManager = "meter_manager"
)

// ManageableRoles is the single role-hierarchy table consulted by every user
// management path (create, edit, delete, password reset). A role may manage
// exactly the roles listed for it, nothing else.
var ManageableRoles = map[string][]string{
	RoleSuperUser:    {RoleAdmin, RoleSiteManager, RoleUploader, RoleViewer, RoleMeterManager},
	RoleAdmin:        {RoleSiteManager, RoleUploader, RoleViewer, RoleMeterManager},
	RoleSiteManager:  {RoleUploader, RoleViewer},
	RoleUploader:     {},
	RoleViewer:       {},
	RoleMeterManager: {},
}

func ValidRole(role string) bool {
	_, ok := ManageableRoles[role]
	return ok
}

// CanManage reports whether a user with role actor may manage a user with role
// target.
func CanManage(actor, target string) bool {
	for _, r := range ManageableRoles[actor] {
		if r == target {
			return true
		}
	}
	return false
}
