// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. Password holds the bcrypt hash, never the
// plaintext; only the users service reads or writes it.
type User struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	Password          string
	Contact           int64
	ProfilePictureURL string
	CreatedAt         time.Time
}

// DisplayName is the denormalized label carried in access-token claims.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
