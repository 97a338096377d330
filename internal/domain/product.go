package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. The terminal only ever holds a read-only
// copy fetched from the backend.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"createdAt"`
}
