package rbac

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog maps each permission to the roles allowed to exercise it.
// It is read-only once built and safe for concurrent use.
type Catalog struct {
	grants map[Permission]map[Role]struct{}
}

// NewCatalog validates and copies grants. Unknown permissions or roles are
// configuration errors.
func NewCatalog(grants map[Permission][]Role) (*Catalog, error) {
	c := &Catalog{grants: make(map[Permission]map[Role]struct{}, len(grants))}
	for perm, roles := range grants {
		if !perm.Valid() {
			return nil, fmt.Errorf("rbac: catalog references unknown permission %q", perm)
		}
		set := make(map[Role]struct{}, len(roles))
		for _, role := range roles {
			if !role.Valid() {
				return nil, fmt.Errorf("rbac: permission %s grants unknown role %q", perm, role)
			}
			set[role] = struct{}{}
		}
		c.grants[perm] = set
	}
	return c, nil
}

// DefaultCatalog returns the built-in grant table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(map[Permission][]Role{
		PermMaterialsCreate: {RoleAdmin, RoleSupervisor},
		PermMaterialsEdit:   {RoleAdmin, RoleSupervisor},
		PermMaterialsDelete: {RoleAdmin, RoleSupervisor},
		PermMaterialsView:   {RoleAdmin, RoleSupervisor, RoleLeader, RoleOperator, RoleViewer},

		PermProductionRequestsCreate:  {RoleAdmin, RoleSupervisor, RoleLeader},
		PermProductionRequestsApprove: {RoleAdmin, RoleSupervisor},
		PermProductionRequestsView:    {RoleAdmin, RoleSupervisor, RoleLeader, RoleViewer},

		PermUsersView:           {RoleAdmin, RoleSupervisor},
		PermUsersCreate:         {RoleAdmin, RoleSupervisor},
		PermUsersEdit:           {RoleAdmin, RoleSupervisor},
		PermUsersChangePassword: {RoleAdmin, RoleSupervisor},

		PermProductionLinesCreate: {RoleAdmin, RoleSupervisor},
		PermProductionLinesEdit:   {RoleAdmin, RoleSupervisor},
		PermProductionLinesDelete: {RoleAdmin, RoleSupervisor},
		PermProductionLinesView:   {RoleAdmin, RoleSupervisor, RoleLeader, RoleViewer},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Allows reports whether role is granted perm. Unmapped permissions grant nobody.
func (c *Catalog) Allows(perm Permission, role Role) bool {
	if c == nil {
		return false
	}
	_, ok := c.grants[perm][role]
	return ok
}

// RolesFor returns the roles granted perm, in Roles() order.
func (c *Catalog) RolesFor(perm Permission) []Role {
	var out []Role
	if c == nil {
		return out
	}
	for _, role := range allRoles {
		if c.Allows(perm, role) {
			out = append(out, role)
		}
	}
	return out
}

// Ungranted lists known permissions that no role may exercise.
func (c *Catalog) Ungranted() []Permission {
	var out []Permission
	for _, perm := range allPermissions {
		if len(c.RolesFor(perm)) == 0 {
			out = append(out, perm)
		}
	}
	return out
}

// Grant is a flattened catalog row.
type Grant struct {
	Permission Permission `json:"permission"`
	Roles      []Role     `json:"roles"`
}

// Grants returns the catalog sorted by permission.
func (c *Catalog) Grants() []Grant {
	out := make([]Grant, 0, len(allPermissions))
	for _, perm := range allPermissions {
		out = append(out, Grant{Permission: perm, Roles: c.RolesFor(perm)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Permission < out[j].Permission })
	return out
}

type policyFile struct {
	Grants map[string][]string `yaml:"grants"`
}

// LoadCatalogFile reads a YAML policy of the form
//
//	grants:
//	  materials.create: [admin, supervisor]
//
// and builds a Catalog from it. Permissions absent from the file grant nobody.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rbac: read policy: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a YAML policy document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc policyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rbac: decode policy: %w", err)
	}
	grants := make(map[Permission][]Role, len(doc.Grants))
	for rawPerm, rawRoles := range doc.Grants {
		perm, err := ParsePermission(rawPerm)
		if err != nil {
			return nil, err
		}
		roles := make([]Role, 0, len(rawRoles))
		for _, rawRole := range rawRoles {
			role, err := ParseRole(rawRole)
			if err != nil {
				return nil, fmt.Errorf("rbac: permission %s: %w", perm, err)
			}
			roles = append(roles, role)
		}
		grants[perm] = roles
	}
	return NewCatalog(grants)
}
