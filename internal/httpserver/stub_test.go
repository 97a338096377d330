package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	authsvc "wilpos-terminal/internal/service/auth"
)

type stubAuthSvc struct {
	user      *domain.User
	token     string
	loginErr  error
	lookupErr error

	lastUsername string
	lastPassword string
	lastToken    string
	loginCalls   int
}

func (s *stubAuthSvc) Login(_ context.Context, username, password string) (*domain.User, string, error) {
	s.loginCalls++
	s.lastUsername = username
	s.lastPassword = password
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.user, s.token, nil
}

func (s *stubAuthSvc) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	s.lastToken = token
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if token != s.token {
		return nil, authsvc.ErrInvalidToken
	}
	return s.user, nil
}

type stubCatalogSvc struct {
	products []domain.Product
	err      error
}

func (s *stubCatalogSvc) List(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

type stubSaleSvc struct {
	sale      *domain.Sale
	err       error
	lastUser  int64
	lastDraft domain.SaleDraft
	calls     int
}

func (s *stubSaleSvc) Record(_ context.Context, userID int64, draft domain.SaleDraft) (*domain.Sale, error) {
	s.calls++
	s.lastUser = userID
	s.lastDraft = draft
	return s.sale, s.err
}

var cashier = &domain.User{ID: 2, Username: "cajero", Name: "Cajero Uno", Role: "cajero", Active: true}

func testRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	if deps.AuthSvc == nil {
		deps.AuthSvc = &stubAuthSvc{user: cashier, token: "tok"}
	}
	if deps.CatalogSvc == nil {
		deps.CatalogSvc = &stubCatalogSvc{}
	}
	if deps.SaleSvc == nil {
		deps.SaleSvc = &stubSaleSvc{}
	}
	router, err := buildRouter(logging.Discard(), nil, deps)
	require.NoError(t, err)
	gin.SetMode(gin.TestMode)
	return router
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
