package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"wilpos-terminal/internal/posclient"
	"wilpos-terminal/internal/sessionstore"
	"wilpos-terminal/internal/terminal"
)

type fakeServer struct {
	mu    sync.Mutex
	sales []string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Username != "cajero" || req.Password != "cajero123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Credenciales inválidas"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"token":"tok-1","user":{"id":2,"nombre":"Cajero Uno","username":"cajero","rol":"cajero"}}`))
	})
	mux.HandleFunc("GET /api/productos", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":1,"nombre":"Coca Cola","codigo_barra":"7501","precio_venta":"50.00","stock":24},
			{"id":2,"nombre":"Pan de agua","codigo_barra":null,"precio_venta":10,"stock":100}
		]}`))
	})
	mux.HandleFunc("POST /api/ventas", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		f.mu.Lock()
		f.sales = append(f.sales, buf.String())
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":42}}`))
	})
	return mux
}

func runScript(t *testing.T, store sessionstore.Store, srv *httptest.Server, script ...string) string {
	t.Helper()
	app := terminal.NewApp(store, posclient.New(0, nil), terminal.LocatorConfig{}, nil)
	_, err := app.Restore()
	require.NoError(t, err)

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	require.NoError(t, New(app, in, &out, nil).Run(context.Background()))
	return out.String()
}

func TestConsoleSaleFlow(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	store := sessionstore.NewMemory(nil)

	out := runScript(t, store, srv,
		"",
		"connect "+srv.URL,
		"login cajero wrong",
		"login cajero cajero123",
		"search coca",
		"add 7501",
		"+ 1",
		"pay card",
		"sell",
		"quit",
	)

	assert.Contains(t, out, "Enter the server address")
	assert.Contains(t, out, "Credenciales inválidas")
	assert.Contains(t, out, "Cajero Uno @ ")
	assert.Contains(t, out, `1 matching "coca"`)
	assert.Contains(t, out, "Total (ITBIS incl.): RD$ 118.00")
	assert.Contains(t, out, "[success] Sale #42 recorded")
	assert.Contains(t, out, "Bye.")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.sales, 1)
	sale := fake.sales[0]
	assert.Equal(t, "Tarjeta", gjson.Get(sale, "metodo_pago").String())
	assert.Equal(t, int64(1), gjson.Get(sale, "cliente_id").Int())
	assert.Equal(t, int64(2), gjson.Get(sale, "detalles.0.cantidad").Int())
	assert.Equal(t, "118", gjson.Get(sale, "total").Raw)

	values, _ := store.Load()
	assert.Equal(t, "tok-1", values[sessionstore.KeyToken])
}

func TestConsoleRestoresSessionAndLogsOut(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	store := sessionstore.NewMemory(map[string]string{
		sessionstore.KeyServerAddress: srv.URL,
		sessionstore.KeyAPIBase:       srv.URL + "/api",
		sessionstore.KeyToken:         "tok-1",
		sessionstore.KeyUser:          `{"username":"cajero"}`,
	})

	out := runScript(t, store, srv, "sell", "add 99", "logout", "server", "quit")

	assert.Contains(t, out, "cajero @ ")
	assert.Contains(t, out, "The cart is empty")
	assert.Contains(t, out, "Product not found: 99")
	assert.Contains(t, out, "Sign in")
	assert.Contains(t, out, "Connect to server")

	values, _ := store.Load()
	assert.Empty(t, values)
}

func TestConsoleUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := sessionstore.NewMemory(nil)
	out := runScript(t, store, srv, url, "quit")

	assert.Contains(t, out, "Server not found. Check the address.")
	assert.Contains(t, out, "Server address ["+url+"]")
	assert.Zero(t, store.Writes())
}

// readOnlyStore loads normally but cannot clear keys.
type readOnlyStore struct {
	*sessionstore.Memory
}

func (readOnlyStore) Clear(...string) error { return errors.New("disk full") }

func TestConsoleLogoutStoreFailureKeepsRunning(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	mem := sessionstore.NewMemory(map[string]string{
		sessionstore.KeyServerAddress: srv.URL,
		sessionstore.KeyAPIBase:       srv.URL + "/api",
		sessionstore.KeyToken:         "tok-1",
		sessionstore.KeyUser:          `{"username":"cajero"}`,
	})

	out := runScript(t, readOnlyStore{mem}, srv, "add 7501", "logout", "server", "cart", "quit")

	assert.Equal(t, 2, strings.Count(out, "! Could not clear the saved session"))
	assert.NotContains(t, out, "Sign in")
	assert.NotContains(t, out, "Connect to server")
	// the terminal was not reopened, so the cart survives
	assert.Equal(t, 1, strings.Count(out, "Cart: empty"))
	assert.Contains(t, out, "Bye.")

	values, _ := mem.Load()
	assert.Equal(t, "tok-1", values[sessionstore.KeyToken])
}
