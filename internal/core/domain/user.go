package domain

import "time"

// User is a stored credential record. Username is unique across the store.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
