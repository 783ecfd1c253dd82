package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RolePrincipal UserRole = "principal"
	RoleAdmin     UserRole = "admin"
	RoleTeacher   UserRole = "teacher"
	RoleStudent   UserRole = "student"
)

// Valid reports whether the role is one the system knows about.
func (r UserRole) Valid() bool {
	switch r {
	case RolePrincipal, RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
