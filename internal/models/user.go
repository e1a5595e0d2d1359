package models

import "time"

type User struct {
	ID           string
	Username     string // email address used as the login name
	PasswordHash string
	Role         string // "user", "admin"
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may access the admin surface.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
