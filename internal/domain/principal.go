package domain

// Role is the access level of an acting principal.
type Role string

const (
	RoleSuperadmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleOperator   Role = "OPERATOR"
	RoleViewer     Role = "VIEWER"
)

// Valid reports whether the role is one of the known access levels.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// Principal is the already-authenticated caller on whose behalf an
// operation runs. It is threaded explicitly through every service
// operation; there is no ambient request-bound user.
type Principal struct {
	UserID   string
	TenantID string
	Role     Role
}

// CanWrite reports whether the principal may perform mutations.
func (p Principal) CanWrite() bool {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin, RoleOperator:
		return true
	default:
		return false
	}
}

// IsSuperadmin reports whether the principal may act across tenants.
func (p Principal) IsSuperadmin() bool {
	return p.Role == RoleSuperadmin
}
