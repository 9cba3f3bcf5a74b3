package authz

// Resource names used across the API surface.
const (
	ResourceUniversities     = "universities"
	ResourceFaculties        = "faculties"
	ResourceDepartments      = "departments"
	ResourceCourses          = "courses"
	ResourceUsers            = "users"
	ResourceOutcomes         = "learning_outcomes"
	ResourceTemplates        = "question_templates"
	ResourceResponseSessions = "response_sessions"
	ResourceReports          = "reports"
)

// rolePermissions is the static rule table. Populated here, read-only for
// the life of the process.
var rolePermissions = map[Role][]Rule{
	RoleSuperAdmin: {
		{Resource: ResourceAny, Action: ActionCreate, Scope: ScopeAll},
		{Resource: ResourceAny, Action: ActionRead, Scope: ScopeAll},
		{Resource: ResourceAny, Action: ActionUpdate, Scope: ScopeAll},
		{Resource: ResourceAny, Action: ActionDelete, Scope: ScopeAll},
	},
	RoleUniversityAdmin: {
		{Resource: ResourceFaculties, Action: ActionCreate, Scope: ScopeUniversity},
		{Resource: ResourceFaculties, Action: ActionRead, Scope: ScopeUniversity},
		{Resource: ResourceFaculties, Action: ActionUpdate, Scope: ScopeUniversity},
		{Resource: ResourceFaculties, Action: ActionDelete, Scope: ScopeUniversity},
		{Resource: ResourceDepartments, Action: ActionRead, Scope: ScopeUniversity},
		{Resource: ResourceUsers, Action: ActionCreate, Scope: ScopeUniversity},
		{Resource: ResourceUsers, Action: ActionRead, Scope: ScopeUniversity},
		{Resource: ResourceUsers, Action: ActionUpdate, Scope: ScopeUniversity},
		{Resource: ResourceUsers, Action: ActionDelete, Scope: ScopeUniversity},
		{Resource: ResourceCourses, Action: ActionRead, Scope: ScopeUniversity},
		{Resource: ResourceReports, Action: ActionRead, Scope: ScopeUniversity},
		{Resource: ResourceResponseSessions, Action: ActionRead, Scope: ScopeUniversity},
	},
	RoleFacultyAdmin: {
		{Resource: ResourceDepartments, Action: ActionCreate, Scope: ScopeFaculty},
		{Resource: ResourceDepartments, Action: ActionRead, Scope: ScopeFaculty},
		{Resource: ResourceDepartments, Action: ActionUpdate, Scope: ScopeFaculty},
		{Resource: ResourceDepartments, Action: ActionDelete, Scope: ScopeFaculty},
		{Resource: ResourceUsers, Action: ActionRead, Scope: ScopeFaculty},
		{Resource: ResourceUsers, Action: ActionUpdate, Scope: ScopeFaculty},
		{Resource: ResourceCourses, Action: ActionRead, Scope: ScopeFaculty},
		{Resource: ResourceReports, Action: ActionRead, Scope: ScopeFaculty},
	},
	RoleDepartmentModerator: {
		{Resource: ResourceCourses, Action: ActionCreate, Scope: ScopeDepartment},
		{Resource: ResourceCourses, Action: ActionRead, Scope: ScopeDepartment},
		{Resource: ResourceCourses, Action: ActionUpdate, Scope: ScopeDepartment},
		{Resource: ResourceCourses, Action: ActionDelete, Scope: ScopeDepartment},
		{Resource: ResourceUsers, Action: ActionRead, Scope: ScopeDepartment},
		{Resource: ResourceOutcomes, Action: ActionRead, Scope: ScopeDepartment},
		{Resource: ResourceResponseSessions, Action: ActionRead, Scope: ScopeDepartment},
		{Resource: ResourceReports, Action: ActionRead, Scope: ScopeDepartment},
	},
	RoleTeacher: {
		{Resource: ResourceCourses, Action: ActionRead, Scope: ScopeOwn},
		{Resource: ResourceOutcomes, Action: ActionCreate, Scope: ScopeOwn},
		{Resource: ResourceOutcomes, Action: ActionRead, Scope: ScopeOwn},
		{Resource: ResourceOutcomes, Action: ActionUpdate, Scope: ScopeOwn},
		{Resource: ResourceOutcomes, Action: ActionDelete, Scope: ScopeOwn},
		{Resource: ResourceTemplates, Action: ActionCreate, Scope: ScopeOwn},
		{Resource: ResourceTemplates, Action: ActionRead, Scope: ScopeOwn},
		{Resource: ResourceTemplates, Action: ActionUpdate, Scope: ScopeOwn},
		{Resource: ResourceTemplates, Action: ActionDelete, Scope: ScopeOwn},
		{Resource: ResourceResponseSessions, Action: ActionCreate, Scope: ScopeOwn},
		{Resource: ResourceResponseSessions, Action: ActionRead, Scope: ScopeOwn},
		{Resource: ResourceResponseSessions, Action: ActionUpdate, Scope: ScopeOwn},
		{Resource: ResourceResponseSessions, Action: ActionDelete, Scope: ScopeOwn},
		{Resource: ResourceReports, Action: ActionRead, Scope: ScopeOwn},
	},
	RoleStudent: {
		{Resource: ResourceCourses, Action: ActionRead, Scope: ScopeOwn},
		{Resource: ResourceResponseSessions, Action: ActionRead, Scope: ScopeOwn},
	},
}
