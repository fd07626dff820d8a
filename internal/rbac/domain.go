package rbac

import (
	"fmt"
	"strings"
)

// Role is a fixed category assigned to a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleLeader     Role = "leader"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

var allRoles = []Role{RoleAdmin, RoleSupervisor, RoleLeader, RoleOperator, RoleViewer}

// Roles returns every known role, most privileged first.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole normalises raw into a known Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("rbac: unknown role %q", raw)
	}
	return role, nil
}

// Permission identifies a guarded action.
type Permission string

const (
	PermMaterialsCreate Permission = "materials.create"
	PermMaterialsEdit   Permission = "materials.edit"
	PermMaterialsDelete Permission = "materials.delete"
	PermMaterialsView   Permission = "materials.view"

	PermProductionRequestsCreate  Permission = "production.requests.create"
	PermProductionRequestsApprove Permission = "production.requests.approve"
	PermProductionRequestsView    Permission = "production.requests.view"

	PermUsersView           Permission = "users.view"
	PermUsersCreate         Permission = "users.create"
	PermUsersEdit           Permission = "users.edit"
	PermUsersChangePassword Permission = "users.change_password"

	PermProductionLinesCreate Permission = "production_lines.create"
	PermProductionLinesEdit   Permission = "production_lines.edit"
	PermProductionLinesDelete Permission = "production_lines.delete"
	PermProductionLinesView   Permission = "production_lines.view"
)

var allPermissions = []Permission{
	PermMaterialsCreate,
	PermMaterialsEdit,
	PermMaterialsDelete,
	PermMaterialsView,
	PermProductionRequestsCreate,
	PermProductionRequestsApprove,
	PermProductionRequestsView,
	PermUsersView,
	PermUsersCreate,
	PermUsersEdit,
	PermUsersChangePassword,
	PermProductionLinesCreate,
	PermProductionLinesEdit,
	PermProductionLinesDelete,
	PermProductionLinesView,
}

// Permissions lists the closed permission catalog.
func Permissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Valid reports whether p belongs to the permission catalog.
func (p Permission) Valid() bool {
	for _, known := range allPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePermission normalises raw into a known Permission.
func ParsePermission(raw string) (Permission, error) {
	perm := Permission(strings.ToLower(strings.TrimSpace(raw)))
	if !perm.Valid() {
		return "", fmt.Errorf("rbac: unknown permission %q", raw)
	}
	return perm, nil
}

// Principal describes the authenticated actor.
type Principal interface {
	GetID() int64
	GetRole() Role
}
