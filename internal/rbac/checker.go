package rbac

// Checker decides whether a principal may exercise a permission.
type Checker struct {
	catalog *Catalog
}

// NewChecker builds a Checker over catalog.
func NewChecker(catalog *Catalog) *Checker {
	return &Checker{catalog: catalog}
}

// HasPermission is total: a nil principal, an invalid role or an unmapped
// permission all yield false.
func (c *Checker) HasPermission(principal Principal, perm Permission) bool {
	if c == nil || principal == nil {
		return false
	}
	role := principal.GetRole()
	if !role.Valid() {
		return false
	}
	return c.catalog.Allows(perm, role)
}

// Catalog exposes the read-only catalog the checker consults.
func (c *Checker) Catalog() *Catalog {
	if c == nil {
		return nil
	}
	return c.catalog
}
