// Package wire holds the JSON contract spoken between the terminal and the
// backend. Field names are the backend's and must not change.
package wire

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"wilpos-terminal/internal/domain"
)

// HealthPath is served at the server root, outside the API base.
const HealthPath = "/health"

// Route paths relative to the API base (which itself ends in /api).
const (
	LoginPath    = "/auth/login"
	ProductsPath = "/productos"
	SalesPath    = "/ventas"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

// UserPayload is the user object the reference backend returns on login.
type UserPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Username string `json:"username"`
	Role     string `json:"rol"`
}

type Product struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	Barcode   string `json:"codigo_barra,omitempty"`
	UnitPrice Number `json:"precio_venta"`
	// Stock may be fractional or null for goods sold by weight.
	Stock     Number `json:"stock"`
}

type ProductsResponse struct {
	Success bool      `json:"success"`
	Data    []Product `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

type SaleRequest struct {
	CustomerID    int64            `json:"cliente_id"`
	PaymentMethod string           `json:"metodo_pago"`
	Subtotal      Number           `json:"subtotal"`
	Tax           Number           `json:"impuesto"`
	Total         Number           `json:"total"`
	Lines         []SaleLineDetail `json:"detalles"`
}

type SaleLineDetail struct {
	ProductID int64  `json:"producto_id"`
	Quantity  int    `json:"cantidad"`
	UnitPrice Number `json:"precio_unitario"`
	Subtotal  Number `json:"subtotal"`
}

type SaleResponse struct {
	Success bool         `json:"success"`
	Data    *SaleCreated `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

type SaleCreated struct {
	ID int64 `json:"id"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FromProduct converts a domain product to its wire shape.
func FromProduct(p domain.Product) Product {
	return Product{
		ID:        p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		UnitPrice: NewNumber(p.UnitPrice),
		Stock:     NewNumber(decimal.NewFromInt(int64(p.Stock))),
	}
}

// ToProduct converts a wire product to the domain shape. Fractional stock is
// truncated to whole units.
func (p Product) ToProduct() domain.Product {
	return domain.Product{
		ID:        p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		UnitPrice: p.UnitPrice.Decimal(),
		Stock:     int(p.Stock.Decimal().IntPart()),
	}
}

// FromSaleDraft builds the request body for POST /ventas.
func FromSaleDraft(d domain.SaleDraft) SaleRequest {
	req := SaleRequest{
		CustomerID:    d.CustomerID,
		PaymentMethod: string(d.PaymentMethod),
		Subtotal:      NewNumber(d.Subtotal),
		Tax:           NewNumber(d.Tax),
		Total:         NewNumber(d.Total),
		Lines:         make([]SaleLineDetail, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		req.Lines = append(req.Lines, SaleLineDetail{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: NewNumber(l.UnitPrice),
			Subtotal:  NewNumber(l.Subtotal),
		})
	}
	return req
}

// ToSaleDraft converts a received request body to a draft.
func (r SaleRequest) ToSaleDraft() domain.SaleDraft {
	d := domain.SaleDraft{
		CustomerID:    r.CustomerID,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Subtotal:      r.Subtotal.Decimal(),
		Tax:           r.Tax.Decimal(),
		Total:         r.Total.Decimal(),
		Lines:         make([]domain.SaleLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		d.Lines = append(d.Lines, domain.SaleLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Decimal(),
			Subtotal:  l.Subtotal.Decimal(),
		})
	}
	return d
}
