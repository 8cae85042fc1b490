package auth

import "fmt"

// RequireRole fails with ErrUnauthorized unless p holds one of roles, and
// with ErrUnauthenticated when there is no principal at all.
func RequireRole(p *Principal, roles ...string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q not in %v", ErrUnauthorized, p.Role, roles)
}
