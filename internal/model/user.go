package model

import "time"

// Roles understood by the API.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents an account as stored in the `users` table.  The
// booking core only reads ID, Name and Email; the password hash and
// role are used by the auth endpoints.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name printed on the booking notification.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password, never serialized.
//  Role         – CUSTOMER or ADMIN.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Name         string    `json:"name"`       // users.name
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         string    `json:"role"`       // users.role
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}
