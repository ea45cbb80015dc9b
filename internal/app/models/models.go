package models

// Role defines the user role type
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleMentor
}

// Identity is the authenticated caller of a workflow operation. It is
// built from the access token by the HTTP layer and passed explicitly into
// every service call.
type Identity struct {
	UserID string
	Role   Role
}

// Authenticated reports whether the identity carries a user.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// IsMentor reports whether the caller has the mentor role.
func (i Identity) IsMentor() bool {
	return i.Role == RoleMentor
}
