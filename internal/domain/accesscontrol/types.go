package accesscontrol

import "errors"

// RoleName is one rung of the storefront privilege ladder.
type RoleName string

const (
	RoleMaster   RoleName = "master"
	RoleAdmin    RoleName = "admin"
	RoleEmployee RoleName = "employee"
	RoleUser     RoleName = "user"
)

// unknownRank is worse than every real role, so unknown strings never pass a check.
const unknownRank = 99

var ErrUserNotFound = errors.New("user not found")

var ranks = map[RoleName]int{
	RoleMaster:   1,
	RoleAdmin:    2,
	RoleEmployee: 3,
	RoleUser:     4,
}

// Roles lists every valid role from most to least privileged.
func Roles() []RoleName {
	return []RoleName{RoleMaster, RoleAdmin, RoleEmployee, RoleUser}
}

// Rank returns the numeric level of a role; lower is more privileged.
func (r RoleName) Rank() int {
	if n, ok := ranks[r]; ok {
		return n
	}
	return unknownRank
}

func (r RoleName) Valid() bool {
	_, ok := ranks[r]
	return ok
}

// HasRole reports whether actual is at least as privileged as required.
// An unknown required role is never satisfied.
func HasRole(actual, required RoleName) bool {
	if !required.Valid() || !actual.Valid() {
		return false
	}
	return actual.Rank() <= required.Rank()
}

// Permissions are the capability flags derived from a role. They are never stored.
type Permissions struct {
	CanAccessAdmin    bool `json:"canAccessAdmin"`
	CanManageProducts bool `json:"canManageProducts"`
	CanManageUsers    bool `json:"canManageUsers"`
	CanManageSystem   bool `json:"canManageSystem"`
}

func PermissionsFor(role RoleName) Permissions {
	return Permissions{
		CanAccessAdmin:    HasRole(role, RoleEmployee),
		CanManageProducts: HasRole(role, RoleAdmin),
		CanManageUsers:    HasRole(role, RoleAdmin),
		CanManageSystem:   HasRole(role, RoleMaster),
	}
}

// CanCreate reports whether actor may create an account holding target.
// Only a master may mint master or admin accounts.
func CanCreate(actor, target RoleName) bool {
	switch target {
	case RoleMaster, RoleAdmin:
		return actor == RoleMaster
	default:
		return HasRole(actor, RoleAdmin)
	}
}
