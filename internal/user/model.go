package user

import "time"

// User represents a BBS account.
type User struct {
	ID               int
	Username         string
	PasswordHash     string
	RegistrationDate time.Time
	Role             string
}

// Roles. Sysop is the only elevated role.
const (
	RoleUser  = "user"
	RoleSysop = "sysop"
)

// IsSysop reports whether the account carries the sysop role.
func (u *User) IsSysop() bool {
	return u.Role == RoleSysop
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleSysop
}
