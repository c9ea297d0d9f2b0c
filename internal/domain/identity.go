package domain

import "strings"

type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// Identity is the authenticated subject attached to a connection after the
// token has been validated. It is immutable for the lifetime of the
// connection.
type Identity struct {
	Email    string
	Role     Role
	DoctorID int64
}

func NewIdentity(email string, role Role, doctorID int64) Identity {
	if role == "" {
		role = RoleUser
	}
	return Identity{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Role:     role,
		DoctorID: doctorID,
	}
}

// CanCreateCarePoint reports whether the identity may flag messages as
// clinically significant.
func (i Identity) CanCreateCarePoint() bool {
	return i.Role == RoleDoctor || i.Role == RoleAdmin
}
