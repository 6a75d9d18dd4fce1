package entity

import "github.com/google/uuid"

type UserRole string

const (
	RoleTenant   UserRole = "TENANT"
	RoleLandlord UserRole = "LANDLORD"
	RoleAdmin    UserRole = "ADMIN"
)

// User is owned by the account service; bookings only read it.
type User struct {
	ID    uuid.UUID `db:"id"`
	Name  string    `db:"name"`
	Email string    `db:"email"`
	Role  UserRole  `db:"role"`
}

type UserSummary struct {
	ID    uuid.UUID
	Name  string
	Email string
}
