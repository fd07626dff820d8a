package users

import (
	"strings"
	"unicode/utf8"

	"github.com/plantstock/plantstock/internal/rbac"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

const passwordTooLong = "Password must be at most 72 bytes"

// passwordLengthMessage reports why password has an unusable length, or "".
func passwordLengthMessage(password string) string {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return "Password must be at least 8 characters"
	case len(password) > MaxPasswordBytes:
		return passwordTooLong
	}
	return ""
}

// User is a managed account. The password hash never leaves the repository.
type User struct {
	ID       int64     `json:"id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	FullName string    `json:"full_name" db:"full_name"`
	Role     rbac.Role `json:"role" db:"user_role"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// CreateForm carries a new account.
type CreateForm struct {
	Username        string `json:"username" validate:"required,max=50"`
	FullName        string `json:"full_name" validate:"required,max=100"`
	Role            string `json:"role" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	IsActive        *bool  `json:"is_active,omitempty"`
}

// UpdateForm carries the editable profile fields of an account.
type UpdateForm struct {
	Username string `json:"username" validate:"required,max=50"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// PasswordForm carries a password change.
type PasswordForm struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (f CreateForm) normalize() CreateForm {
	f.Username = strings.TrimSpace(f.Username)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Role = strings.TrimSpace(f.Role)
	return f
}

func (f UpdateForm) normalize() UpdateForm {
	f.Username = strings.TrimSpace(f.Username)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Role = strings.TrimSpace(f.Role)
	return f
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func (u User) meta() map[string]any {
	return map[string]any{
		"username":  u.Username,
		"full_name": u.FullName,
		"role":      string(u.Role),
		"is_active": u.IsActive,
	}
}
