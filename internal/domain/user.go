package domain

import "time"

// Role is an account role.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// Valid reports whether r is BUYER or SELLER.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// User is a storefront account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
