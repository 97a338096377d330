package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/metrics"
	authsvc "wilpos-terminal/internal/service/auth"
	salesvc "wilpos-terminal/internal/service/sale"
	"wilpos-terminal/internal/wire"
)

type handlers struct {
	auth    AuthService
	catalog CatalogService
	sales   SaleService
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

func (h *handlers) login(c *gin.Context) {
	var req wire.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, wire.LoginResponse{Success: false, Message: "username and password are required"})
		return
	}

	u, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			h.metrics.RecordLogin("rejected")
			c.JSON(http.StatusUnauthorized, wire.LoginResponse{Success: false, Message: "invalid username or password"})
			return
		}
		h.metrics.RecordLogin("error")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, wire.LoginResponse{Success: false, Message: "internal error"})
		return
	}

	h.metrics.RecordLogin("ok")
	user, err := marshalUser(wire.UserPayload{ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, wire.LoginResponse{Success: false, Message: "internal error"})
		return
	}
	c.JSON(http.StatusOK, wire.LoginResponse{Success: true, Token: token, User: user})
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, wire.ProductsResponse{Success: false, Message: "could not load products"})
		return
	}
	data := make([]wire.Product, 0, len(products))
	for _, p := range products {
		data = append(data, wire.FromProduct(p))
	}
	c.JSON(http.StatusOK, wire.ProductsResponse{Success: true, Data: data})
}

func (h *handlers) createSale(c *gin.Context) {
	var req wire.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.SaleResponse{Success: false, Error: "malformed sale body"})
		return
	}
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, wire.SaleResponse{Success: false, Error: "unauthorized"})
		return
	}

	sale, err := h.sales.Record(c.Request.Context(), user.ID, req.ToSaleDraft())
	if err != nil {
		if errors.Is(err, salesvc.ErrInvalidSale) {
			c.JSON(http.StatusBadRequest, wire.SaleResponse{Success: false, Error: err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, wire.SaleResponse{Success: false, Error: "could not record sale"})
		return
	}

	h.metrics.RecordSale(string(sale.PaymentMethod), sale.Total)
	c.JSON(http.StatusCreated, wire.SaleResponse{Success: true, Data: &wire.SaleCreated{ID: sale.ID}})
}
