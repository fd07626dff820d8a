package auth

import "github.com/plantstock/plantstock/internal/rbac"

// User is an authenticated account. It satisfies rbac.Principal.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Role         rbac.Role `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
}

func (u *User) GetID() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func (u *User) GetRole() rbac.Role {
	if u == nil {
		return ""
	}
	return u.Role
}

func (u *User) GetUsername() string {
	if u == nil {
		return ""
	}
	return u.Username
}

var _ rbac.Principal = (*User)(nil)
