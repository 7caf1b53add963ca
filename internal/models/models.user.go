// FilePath: internal/models/models.user.go
package models

import "time"

// Role is the privilege level of a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleRemoved Role = "removed"

	// RoleUnauthenticated is a sentinel accepted by authorization policies,
	// never a role a user record can hold
	RoleUnauthenticated Role = "unauthenticated"
)

// User is a user record as returned by the users service
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// NewUser is a freshly created user including its generated password
type NewUser struct {
	User
	Password string `json:"password"`
}
