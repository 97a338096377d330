package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRate is the ITBIS rate applied on top of every sale subtotal.
var TaxRate = decimal.RequireFromString("0.18")

// WalkInCustomerID identifies the generic customer ("Cliente general") used
// when a sale is not billed to a registered customer.
const WalkInCustomerID int64 = 1

// PaymentMethod is how a sale is settled. The wire values are the backend's.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Efectivo"
	PaymentCard PaymentMethod = "Tarjeta"
)

// DefaultPaymentMethod is selected when a terminal opens.
const DefaultPaymentMethod = PaymentCash

// Valid reports whether m is one of the accepted methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// ParsePaymentMethod accepts the wire values as well as "cash" and "card".
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "efectivo":
		return PaymentCash, nil
	case "card", "tarjeta":
		return PaymentCard, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Totals is the derived money summary of a set of cart lines.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives subtotal, tax and total from lines. Nothing is rounded;
// rounding happens only when amounts are displayed or compared.
func ComputeTotals(lines []CartLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
