package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the sole persisted entity. PasswordHash and the reset-token pair
// are never serialized into API responses.
type User struct {
	ID                   string     `json:"id"`
	FullName             string     `json:"fullName"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	Role                 Role       `json:"role"`
	LastLogin            *time.Time `json:"lastLogin,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}
