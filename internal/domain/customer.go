package domain

import "time"

// Customer is the party a sale is billed to. Terminal sales are billed to the
// walk-in customer unless a specific customer is chosen.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
