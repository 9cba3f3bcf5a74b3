package authz

// NavItem is one entry in the navigation sidebar.
type NavItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type navEntry struct {
	item  NavItem
	roles []Role
}

// navigation is the fixed master list. Order here is display order.
var navigation = []navEntry{
	{NavItem{"Dashboard", "/dashboard"}, AllRoles},
	{NavItem{"Universities", "/universities"}, []Role{RoleSuperAdmin}},
	{NavItem{"Faculties", "/faculties"}, []Role{RoleSuperAdmin, RoleUniversityAdmin}},
	{NavItem{"Departments", "/departments"}, []Role{RoleSuperAdmin, RoleUniversityAdmin, RoleFacultyAdmin}},
	{NavItem{"Courses", "/courses"}, []Role{RoleSuperAdmin, RoleUniversityAdmin, RoleFacultyAdmin, RoleDepartmentModerator, RoleTeacher}},
	{NavItem{"Users", "/users"}, []Role{RoleSuperAdmin, RoleUniversityAdmin, RoleFacultyAdmin, RoleDepartmentModerator}},
	{NavItem{"Learning Outcomes", "/outcomes"}, []Role{RoleSuperAdmin, RoleDepartmentModerator, RoleTeacher}},
	{NavItem{"Question Templates", "/templates"}, []Role{RoleSuperAdmin, RoleTeacher}},
	{NavItem{"CLO Mapping", "/clo-mapping"}, []Role{RoleSuperAdmin, RoleTeacher}},
	{NavItem{"Response Sessions", "/sessions"}, []Role{RoleSuperAdmin, RoleDepartmentModerator, RoleTeacher, RoleStudent}},
	{NavItem{"Reports", "/reports"}, AllRoles},
}

// NavigationItems returns the navigation entries visible to role, in
// master-list order. An unknown role sees nothing.
func NavigationItems(role Role) []NavItem {
	items := make([]NavItem, 0, len(navigation))
	for _, e := range navigation {
		for _, r := range e.roles {
			if r == role {
				items = append(items, e.item)
				break
			}
		}
	}
	return items
}
