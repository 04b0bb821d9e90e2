package perfsync

import "context"

// Role is the acting user's role as reported by the authentication layer.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "ADMIN"
)

// Identity is the acting user.
type Identity struct {
	ID   int64
	Name string
	Role Role
}

// IdentityProvider supplies the acting user. The stores only use it to stamp
// activity events; permission gating stays with the caller.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, bool)
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func(ctx context.Context) (Identity, bool)

// Identity implements IdentityProvider.
func (f IdentityFunc) Identity(ctx context.Context) (Identity, bool) {
	if f == nil {
		return Identity{}, false
	}
	return f(ctx)
}

// StaticIdentity always reports id.
func StaticIdentity(id Identity) IdentityProvider {
	return IdentityFunc(func(context.Context) (Identity, bool) {
		return id, true
	})
}
