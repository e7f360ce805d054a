package user

import "time"

// User mirrors the record kept by the auth subsystem. This service never
// touches credentials; the row exists so session ownership can cascade.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
