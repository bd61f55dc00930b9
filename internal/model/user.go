package model

import "fmt"

// User is an account allowed to sign in.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Unit      string `json:"unit"`
}

// FullName returns the display name, falling back to the login.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Login
	}
}

// Roles.
const (
	RoleAdmin       = "Administrator"
	RoleStorekeeper = "Magazynier"
	RoleUser        = "Użytkownik"
)

// Roles lists the assignable roles in descending order of privilege.
var Roles = []string{RoleAdmin, RoleStorekeeper, RoleUser}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:       3,
		RoleStorekeeper: 2,
		RoleUser:        1,
	}
	return levels[minimum] > 0 && levels[role] >= levels[minimum]
}

// MinPasswordLength is the shortest password accepted for new or changed passwords.
const MinPasswordLength = 8

// ValidatePassword checks a new password against the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
