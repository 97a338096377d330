package wire

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wilpos-terminal/internal/domain"
)

func TestSaleRequestJSONShape(t *testing.T) {
	draft := domain.NewSaleDraft(domain.WalkInCustomerID, domain.PaymentCash, []domain.CartLine{
		{ProductID: 1, Name: "Coca Cola", UnitPrice: decimal.NewFromInt(50), Quantity: 2},
	})
	b, err := json.Marshal(FromSaleDraft(draft))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"cliente_id": 1,
		"metodo_pago": "Efectivo",
		"subtotal": 100,
		"impuesto": 18,
		"total": 118,
		"detalles": [{"producto_id": 1, "cantidad": 2, "precio_unitario": 50, "subtotal": 100}]
	}`, string(b))
}

func TestProductAcceptsNumbersAndStrings(t *testing.T) {
	var resp ProductsResponse
	body := `{"success":true,"data":[
		{"id":1,"nombre":"Coca Cola","codigo_barra":"7501","precio_venta":50.5,"stock":10},
		{"id":2,"nombre":"Pan","precio_venta":"12.25","stock":null},
		{"id":3,"nombre":"Gift","precio_venta":null},
		{"id":4,"nombre":"Queso por libra","precio_venta":210,"stock":2.5}
	]}`
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Data, 4)

	p := resp.Data[0].ToProduct()
	assert.Equal(t, "50.5", p.UnitPrice.String())
	assert.Equal(t, "7501", p.Barcode)
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, "12.25", resp.Data[1].ToProduct().UnitPrice.String())
	assert.Equal(t, 0, resp.Data[1].ToProduct().Stock)
	assert.True(t, resp.Data[2].ToProduct().UnitPrice.IsZero())
	assert.Equal(t, 2, resp.Data[3].ToProduct().Stock)
}

func TestSaleRequestRoundTripToDraft(t *testing.T) {
	var req SaleRequest
	body := `{"cliente_id":1,"metodo_pago":"Tarjeta","subtotal":10.5,"impuesto":1.89,"total":12.39,
		"detalles":[{"producto_id":7,"cantidad":3,"precio_unitario":3.5,"subtotal":10.5}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	d := req.ToSaleDraft()
	assert.Equal(t, domain.PaymentCard, d.PaymentMethod)
	assert.Equal(t, "12.39", d.Total.String())
	require.Len(t, d.Lines, 1)
	assert.Equal(t, int64(7), d.Lines[0].ProductID)
}
