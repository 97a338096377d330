package httpserver

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"wilpos-terminal/internal/domain"
	authsvc "wilpos-terminal/internal/service/auth"
	salesvc "wilpos-terminal/internal/service/sale"
)

func TestLoginSuccess(t *testing.T) {
	auth := &stubAuthSvc{user: cashier, token: "tok-1"}
	router := testRouter(t, Deps{AuthSvc: auth})

	rec := do(router, http.MethodPost, "/api/auth/login", "", `{"username":"cajero","password":"cajero123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"token":"tok-1","user":{"id":2,"nombre":"Cajero Uno","username":"cajero","rol":"cajero"}}`, rec.Body.String())
	assert.Equal(t, "cajero", auth.lastUsername)
	assert.Equal(t, "cajero123", auth.lastPassword)
}

func TestLoginInvalidCredentials(t *testing.T) {
	auth := &stubAuthSvc{loginErr: authsvc.ErrInvalidCredentials}
	router := testRouter(t, Deps{AuthSvc: auth})

	rec := do(router, http.MethodPost, "/api/auth/login", "", `{"username":"cajero","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, gjson.Get(rec.Body.String(), "success").Bool())
	assert.Equal(t, "invalid username or password", gjson.Get(rec.Body.String(), "message").String())
	assert.False(t, gjson.Get(rec.Body.String(), "token").Exists())
}

func TestLoginMalformed(t *testing.T) {
	auth := &stubAuthSvc{}
	router := testRouter(t, Deps{AuthSvc: auth})

	for _, body := range []string{`{`, `{"username":"cajero"}`, `{"username":" ","password":"x"}`} {
		rec := do(router, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "username and password are required", gjson.Get(rec.Body.String(), "message").String())
	}
	assert.Zero(t, auth.loginCalls)
}

func TestLoginServiceFailure(t *testing.T) {
	router := testRouter(t, Deps{AuthSvc: &stubAuthSvc{loginErr: errors.New("db down")}})
	rec := do(router, http.MethodPost, "/api/auth/login", "", `{"username":"a","password":"b"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	auth := &stubAuthSvc{loginErr: authsvc.ErrInvalidCredentials}
	router := testRouter(t, Deps{AuthSvc: auth, LoginRatePerMinute: 2})

	body := `{"username":"cajero","password":"nope"}`
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "/api/auth/login", "", body).Code)
	rec := do(router, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, auth.loginCalls)
}

func TestProductsRequireToken(t *testing.T) {
	router := testRouter(t, Deps{})

	rec := do(router, http.MethodGet, "/api/productos", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, gjson.Get(rec.Body.String(), "success").Bool())

	rec = do(router, http.MethodGet, "/api/productos", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductsTokenLookupFailure(t *testing.T) {
	router := testRouter(t, Deps{AuthSvc: &stubAuthSvc{lookupErr: errors.New("db down")}})
	rec := do(router, http.MethodGet, "/api/productos", "tok", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProductsList(t *testing.T) {
	catalog := &stubCatalogSvc{products: []domain.Product{
		{ID: 1, Name: "Coca Cola", Barcode: "7501", UnitPrice: decimal.RequireFromString("50.00"), Stock: 24},
		{ID: 2, Name: "Pan", UnitPrice: decimal.RequireFromString("10.5"), Stock: 0},
	}}
	router := testRouter(t, Deps{CatalogSvc: catalog})

	rec := do(router, http.MethodGet, "/api/productos", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[
		{"id":1,"nombre":"Coca Cola","codigo_barra":"7501","precio_venta":50,"stock":24},
		{"id":2,"nombre":"Pan","precio_venta":10.5,"stock":0}
	]}`, rec.Body.String())
}

func TestProductsFailure(t *testing.T) {
	router := testRouter(t, Deps{CatalogSvc: &stubCatalogSvc{err: errors.New("boom")}})
	rec := do(router, http.MethodGet, "/api/productos", "tok", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, gjson.Get(rec.Body.String(), "success").Bool())
}

const saleBody = `{
	"cliente_id": 1,
	"metodo_pago": "Tarjeta",
	"subtotal": 100,
	"impuesto": 18,
	"total": 118,
	"detalles": [{"producto_id": 1, "cantidad": 2, "precio_unitario": 50, "subtotal": 100}]
}`

func TestCreateSale(t *testing.T) {
	sales := &stubSaleSvc{sale: &domain.Sale{ID: 42, PaymentMethod: domain.PaymentCard, Total: decimal.NewFromInt(118)}}
	router := testRouter(t, Deps{SaleSvc: sales})

	rec := do(router, http.MethodPost, "/api/ventas", "tok", saleBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":42}}`, rec.Body.String())

	assert.Equal(t, int64(2), sales.lastUser)
	d := sales.lastDraft
	assert.Equal(t, domain.PaymentCard, d.PaymentMethod)
	assert.Equal(t, int64(1), d.CustomerID)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, 2, d.Lines[0].Quantity)
	assert.True(t, d.Total.Equal(decimal.NewFromInt(118)))
}

func TestCreateSaleValidationError(t *testing.T) {
	sales := &stubSaleSvc{err: &salesvc.ValidationError{Reason: "unknown product 9"}}
	router := testRouter(t, Deps{SaleSvc: sales})

	rec := do(router, http.MethodPost, "/api/ventas", "tok", saleBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unknown product 9"}`, rec.Body.String())
}

func TestCreateSaleMalformedAndUnauthorized(t *testing.T) {
	sales := &stubSaleSvc{}
	router := testRouter(t, Deps{SaleSvc: sales})

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/api/ventas", "tok", `{"detalles":"x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "/api/ventas", "", saleBody).Code)
	assert.Zero(t, sales.calls)
}

func TestCreateSaleStorageFailure(t *testing.T) {
	router := testRouter(t, Deps{SaleSvc: &stubSaleSvc{err: errors.New("db down")}})
	rec := do(router, http.MethodPost, "/api/ventas", "tok", saleBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "could not record sale", gjson.Get(rec.Body.String(), "error").String())
}
