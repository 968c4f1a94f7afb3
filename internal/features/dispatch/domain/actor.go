package domain

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleClient  Role = "client"
	RoleCourier Role = "courier"
)

// Actor is the user performing an operation, resolved from the session by the
// caller and passed explicitly into every engine call.
type Actor struct {
	ID   string
	Name string
	Role Role
	City string
}

// Require fails with ErrNoSession when no user is attached and with
// ErrForbidden when the role does not match. An empty role only checks the session.
func (a Actor) Require(role Role) error {
	if a.ID == "" {
		return ErrNoSession
	}
	if role != "" && a.Role != role {
		return ErrForbidden
	}
	return nil
}
