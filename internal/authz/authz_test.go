package authz_test

import (
	"testing"

	"github.com/crs-edu/crs-backend/internal/authz"
)

func TestHasPermission_ExactMatch(t *testing.T) {
	tests := []struct {
		name     string
		role     authz.Role
		resource string
		action   authz.Action
		scope    authz.Scope
		want     bool
	}{
		{"teacher creates own outcome", authz.RoleTeacher, authz.ResourceOutcomes, authz.ActionCreate, authz.ScopeOwn, true},
		{"teacher deletes own outcome", authz.RoleTeacher, authz.ResourceOutcomes, authz.ActionDelete, authz.ScopeOwn, true},
		{"teacher cannot create outcome at department scope", authz.RoleTeacher, authz.ResourceOutcomes, authz.ActionCreate, authz.ScopeDepartment, false},
		{"teacher cannot create course", authz.RoleTeacher, authz.ResourceCourses, authz.ActionCreate, authz.ScopeOwn, false},
		{"moderator creates department course", authz.RoleDepartmentModerator, authz.ResourceCourses, authz.ActionCreate, authz.ScopeDepartment, true},
		{"moderator cannot delete users", authz.RoleDepartmentModerator, authz.ResourceUsers, authz.ActionDelete, authz.ScopeDepartment, false},
		{"university admin manages faculties", authz.RoleUniversityAdmin, authz.ResourceFaculties, authz.ActionUpdate, authz.ScopeUniversity, true},
		{"student reads own sessions", authz.RoleStudent, authz.ResourceResponseSessions, authz.ActionRead, authz.ScopeOwn, true},
		{"student cannot read outcomes", authz.RoleStudent, authz.ResourceOutcomes, authz.ActionRead, authz.ScopeOwn, false},
		{"unknown role denied", authz.Role("visitor"), authz.ResourceCourses, authz.ActionRead, authz.ScopeOwn, false},
		{"unknown resource denied", authz.RoleTeacher, "grades", authz.ActionRead, authz.ScopeOwn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.HasPermission(tt.role, tt.resource, tt.action, tt.scope); got != tt.want {
				t.Errorf("HasPermission(%q, %q, %q, %q) = %v, want %v",
					tt.role, tt.resource, tt.action, tt.scope, got, tt.want)
			}
		})
	}
}

// The wildcard rule must grant regardless of scope even though no rule for
// the named resource mentions that scope.
func TestHasPermission_WildcardIgnoresScope(t *testing.T) {
	scopes := []authz.Scope{authz.ScopeOwn, authz.ScopeDepartment, authz.ScopeFaculty, authz.ScopeUniversity, authz.ScopeAll}
	for _, scope := range scopes {
		if !authz.HasPermission(authz.RoleSuperAdmin, "anything", authz.ActionRead, scope) {
			t.Errorf("super_admin read %q scope denied, wildcard fallback should fire", scope)
		}
	}
	if !authz.HasPermission(authz.RoleSuperAdmin, authz.ResourceCourses, authz.ActionDelete, authz.ScopeDepartment) {
		t.Error("super_admin delete courses at department scope denied")
	}
}

func TestHasPermission_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if !authz.HasPermission(authz.RoleTeacher, authz.ResourceOutcomes, authz.ActionRead, authz.ScopeOwn) {
			t.Fatalf("call %d: expected allow", i)
		}
		if authz.HasPermission(authz.RoleStudent, authz.ResourceUsers, authz.ActionRead, authz.ScopeOwn) {
			t.Fatalf("call %d: expected deny", i)
		}
	}
}

func TestCan_DefaultsToOwnScope(t *testing.T) {
	if !authz.Can(authz.RoleTeacher, authz.ResourceOutcomes, authz.ActionUpdate) {
		t.Error("Can() should match own-scope rule")
	}
	if authz.Can(authz.RoleStudent, authz.ResourceOutcomes, authz.ActionUpdate) {
		t.Error("Can() should deny student outcome update")
	}
}

func TestCanAccessResource(t *testing.T) {
	tests := []struct {
		role     authz.Role
		resource string
		want     bool
	}{
		{authz.RoleSuperAdmin, "anything", true},
		{authz.RoleTeacher, authz.ResourceTemplates, true},
		{authz.RoleTeacher, authz.ResourceUniversities, false},
		{authz.RoleStudent, authz.ResourceResponseSessions, true},
		{authz.RoleStudent, authz.ResourceUsers, false},
		{authz.Role("visitor"), authz.ResourceCourses, false},
	}
	for _, tt := range tests {
		if got := authz.CanAccessResource(tt.role, tt.resource); got != tt.want {
			t.Errorf("CanAccessResource(%q, %q) = %v, want %v", tt.role, tt.resource, got, tt.want)
		}
	}
}

func TestIsHigherRole_StrictTotalOrder(t *testing.T) {
	ordered := authz.AllRoles // descending rank

	for i, a := range ordered {
		if authz.IsHigherRole(a, a) {
			t.Errorf("IsHigherRole(%q, %q) = true, want false for equal roles", a, a)
		}
		for _, b := range ordered[i+1:] {
			if !authz.IsHigherRole(a, b) {
				t.Errorf("IsHigherRole(%q, %q) = false, want true", a, b)
			}
			if authz.IsHigherRole(b, a) {
				t.Errorf("IsHigherRole(%q, %q) = true, want false", b, a)
			}
		}
	}
}

func TestCanManageUser_MatchesIsHigherRole(t *testing.T) {
	roles := append([]authz.Role{}, authz.AllRoles...)
	roles = append(roles, authz.Role("visitor"))

	for _, a := range roles {
		for _, b := range roles {
			if got, want := authz.CanManageUser(a, b), authz.IsHigherRole(a, b); got != want {
				t.Errorf("CanManageUser(%q, %q) = %v, IsHigherRole = %v", a, b, got, want)
			}
		}
	}
}

func TestKnown(t *testing.T) {
	for _, r := range authz.AllRoles {
		if !authz.Known(r) {
			t.Errorf("Known(%q) = false", r)
		}
	}
	if authz.Known(authz.Role("visitor")) {
		t.Error(`Known("visitor") = true`)
	}
}
