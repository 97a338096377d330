package domain

import "github.com/shopspring/decimal"

// CartLine aggregates every unit of one product in the sale being assembled.
// Quantity is always >= 1; a line that would drop to zero is removed instead.
type CartLine struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns unitPrice × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
