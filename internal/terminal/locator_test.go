package terminal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wilpos-terminal/internal/posclient"
	"wilpos-terminal/internal/sessionstore"
)

func TestLocatorRejectsBlankInputWithoutNetwork(t *testing.T) {
	backend := &stubBackend{}
	store := sessionstore.NewMemory(nil)
	l := NewLocator(backend, store, LocatorConfig{}, nil)

	_, err := l.Connect(context.Background(), " \t ")
	require.ErrorIs(t, err, ErrEmptyAddress)
	assert.Equal(t, "Enter the server address", LocatorMessage(err))

	health, _, _, _ := backend.calls()
	assert.Zero(t, health)
	assert.Zero(t, store.Writes())
}

func TestLocatorPersistsOnSuccess(t *testing.T) {
	backend := &stubBackend{}
	store := sessionstore.NewMemory(nil)
	l := NewLocator(backend, store, LocatorConfig{}, nil)

	conn, err := l.Connect(context.Background(), "192.168.1.100")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.100:3001/api", conn.APIEndpoint)
	assert.Equal(t, "http://192.168.1.100:3001/health", backend.lastHealthURL)

	values, _ := store.Load()
	assert.Equal(t, map[string]string{
		sessionstore.KeyServerAddress: "192.168.1.100",
		sessionstore.KeyAPIBase:       "http://192.168.1.100:3001/api",
	}, values)
}

func TestLocatorAgainstRealServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := sessionstore.NewMemory(nil)
	l := NewLocator(posclient.New(0, nil), store, LocatorConfig{}, nil)

	conn, err := l.Connect(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api", conn.APIEndpoint)
}

func TestLocatorUnreachableWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	store := sessionstore.NewMemory(nil)
	l := NewLocator(posclient.New(0, nil), store, LocatorConfig{ProbeTimeout: 5 * time.Second}, nil)

	_, err := l.Connect(context.Background(), addr)
	require.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, "Server not found. Check the address.", LocatorMessage(err))
	assert.Zero(t, store.Writes())
}

func TestLocatorProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	store := sessionstore.NewMemory(nil)
	l := NewLocator(posclient.New(0, nil), store, LocatorConfig{ProbeTimeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	_, err := l.Connect(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrUnreachable)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, store.Writes())
}

func TestLocatorNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := sessionstore.NewMemory(nil)
	l := NewLocator(posclient.New(0, nil), store, LocatorConfig{}, nil)

	_, err := l.Connect(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrRejected)
	assert.False(t, errors.Is(err, ErrUnreachable))
	assert.Equal(t, "Server not found. Check the address.", LocatorMessage(err))
	assert.Zero(t, store.Writes())
}
