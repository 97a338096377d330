package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleDraft is the payload derived from a cart at submission time. It is never
// stored on the terminal.
type SaleDraft struct {
	CustomerID    int64
	PaymentMethod PaymentMethod
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Lines         []SaleLine
}

// NewSaleDraft snapshots lines into a draft billed to customerID.
func NewSaleDraft(customerID int64, method PaymentMethod, lines []CartLine) SaleDraft {
	totals := ComputeTotals(lines)
	draft := SaleDraft{
		CustomerID:    customerID,
		PaymentMethod: method,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Lines:         make([]SaleLine, 0, len(lines)),
	}
	for _, l := range lines {
		draft.Lines = append(draft.Lines, SaleLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.LineTotal(),
		})
	}
	return draft
}

// SaleLine is one product row of a sale.
type SaleLine struct {
	ID        int64           `json:"id,omitempty"`
	SaleID    int64           `json:"saleId,omitempty"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is a recorded transaction as persisted by the backend.
type Sale struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customerId"`
	UserID        int64           `json:"userId"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Lines         []SaleLine      `json:"lines,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
