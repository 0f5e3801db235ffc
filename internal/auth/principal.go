package auth

import "context"

// Principal is the resolved identity a protected request acts as.  It is
// re-read from the store on every call rather than trusted from the
// token, so an admin role change takes effect immediately.
type Principal struct {
	ID       uint64
	Username string
	Role     string
	Active   bool
}

// PrincipalResolver loads the current principal for a user id.  The user
// repository implements it; tests substitute fakes.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id uint64) (Principal, error)
}
