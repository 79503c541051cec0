// README: Actor identity resolved from the verified auth token.
package types

const (
	RoleCustomer = "customer"
	RoleCourier  = "courier"
	RoleHost     = "host"
	RoleAdmin    = "admin"
)

// Actor is the authenticated caller of a tracking operation. Ownership is
// re-checked against the entity on every call; nothing here is cached.
type Actor struct {
	ID   ID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
