package entities

// Role is the authorization role of an authenticated caller
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Actor is the already-authenticated identity behind a request
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin returns true if the actor holds the administrator role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess returns true if the actor owns the resource or is an administrator
func (a Actor) CanAccess(ownerID int64) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
