package domain

import "time"

// User is a cashier account on the backend.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"nombre"`
	Role         string    `json:"rol"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
