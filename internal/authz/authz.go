// Package authz implements role-based access control for the Course
// Response System. The rule table is built once at init and never
// mutated, so lookups are safe from any number of goroutines.
package authz

// Role identifies a user's position in the administrative hierarchy.
type Role string

const (
	RoleSuperAdmin          Role = "super_admin"
	RoleUniversityAdmin     Role = "university_admin"
	RoleFacultyAdmin        Role = "faculty_admin"
	RoleDepartmentModerator Role = "department_moderator"
	RoleTeacher             Role = "teacher"
	RoleStudent             Role = "student"
)

// roleRanks totally orders the roles. Higher rank manages lower.
var roleRanks = map[Role]int{
	RoleSuperAdmin:          6,
	RoleUniversityAdmin:     5,
	RoleFacultyAdmin:        4,
	RoleDepartmentModerator: 3,
	RoleTeacher:             2,
	RoleStudent:             1,
}

// AllRoles lists every known role in descending rank order.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleUniversityAdmin,
	RoleFacultyAdmin,
	RoleDepartmentModerator,
	RoleTeacher,
	RoleStudent,
}

// Action is a CRUD operation on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Scope is the breadth of data an action applies to.
type Scope string

const (
	ScopeOwn        Scope = "own"
	ScopeDepartment Scope = "department"
	ScopeFaculty    Scope = "faculty"
	ScopeUniversity Scope = "university"
	ScopeAll        Scope = "all"
)

// ResourceAny is the wildcard resource granted to the top-level role.
const ResourceAny = "*"

// Rule grants one action on one resource at one scope.
type Rule struct {
	Resource string
	Action   Action
	Scope    Scope
}

// Known reports whether r is one of the defined roles.
func Known(r Role) bool {
	_, ok := roleRanks[r]
	return ok
}

// HasPermission reports whether role may perform action on resource at the
// given scope.
//
// The check runs in two passes. The first pass matches the resource exactly
// or via wildcard and requires the rule's scope to equal the requested scope
// or be "all". The second pass grants any wildcard-resource rule with a
// matching action regardless of scope: the top-level role's broad grant is
// not narrowed by scope. The passes must stay separate — folding them into
// one check changes the semantics of "all"-scope rules.
func HasPermission(role Role, resource string, action Action, scope Scope) bool {
	rules := rolePermissions[role]

	for _, r := range rules {
		if (r.Resource == resource || r.Resource == ResourceAny) &&
			r.Action == action &&
			(r.Scope == scope || r.Scope == ScopeAll) {
			return true
		}
	}

	for _, r := range rules {
		if r.Resource == ResourceAny && r.Action == action {
			return true
		}
	}

	return false
}

// Can is HasPermission with the default "own" scope.
func Can(role Role, resource string, action Action) bool {
	return HasPermission(role, resource, action, ScopeOwn)
}

// CanAccessResource reports whether role has any rule touching resource,
// ignoring action and scope. Used for coarse visibility decisions.
func CanAccessResource(role Role, resource string) bool {
	for _, r := range rolePermissions[role] {
		if r.Resource == resource || r.Resource == ResourceAny {
			return true
		}
	}
	return false
}

// IsHigherRole reports whether a outranks b strictly. Unknown roles rank
// zero, so they never outrank a known role.
func IsHigherRole(a, b Role) bool {
	return roleRanks[a] > roleRanks[b]
}

// CanManageUser reports whether a manager may administer a target user.
// Managers act only on strictly lower-ranked roles.
func CanManageUser(manager, target Role) bool {
	return IsHigherRole(manager, target)
}
