package terminal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/sessionstore"
)

// State is one of Disconnected, Connected or Authenticated.
type State interface {
	Name() string
	isState()
}

// Disconnected: no verified server. LastAddress pre-fills the address prompt.
type Disconnected struct {
	LastAddress string
}

// Connected: a server is verified but nobody is logged in.
type Connected struct {
	Conn domain.ServerConnection
}

// Authenticated: a cashier session exists on the connected server.
type Authenticated struct {
	Conn    domain.ServerConnection
	Session domain.Session
}

func (Disconnected) Name() string  { return "disconnected" }
func (Connected) Name() string     { return "connected" }
func (Authenticated) Name() string { return "authenticated" }

func (Disconnected) isState()  {}
func (Connected) isState()     {}
func (Authenticated) isState() {}

// Backend is everything the app needs from the server.
type Backend interface {
	HealthChecker
	LoginClient
	SaleClient
}

// App owns the persisted connection/session and moves strictly forward
// (Disconnected → Connected → Authenticated) or back on logout and server change.
type App struct {
	store   sessionstore.Store
	locator *Locator
	auth    *Authenticator
	client  SaleClient
	logger  logrus.FieldLogger

	mu    sync.Mutex
	state State
}

func NewApp(store sessionstore.Store, backend Backend, cfg LocatorConfig, logger logrus.FieldLogger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		store:   store,
		locator: NewLocator(backend, store, cfg, logger),
		auth:    NewAuthenticator(backend, store, logger),
		client:  backend,
		logger:  logger,
		state:   Disconnected{},
	}
}

// Restore derives the initial state from the store. A session without a
// connection, or with an unreadable profile, is discarded.
func (a *App) Restore() (State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	values, err := a.store.Load()
	if err != nil {
		a.logger.WithError(err).Warn("app: could not read stored session, starting disconnected")
		a.state = Disconnected{}
		if errors.Is(err, sessionstore.ErrCorrupt) {
			return a.state, nil
		}
		return a.state, fmt.Errorf("restore: %w", err)
	}

	apiBase := values[sessionstore.KeyAPIBase]
	token := values[sessionstore.KeyToken]
	user := domain.UserProfile(values[sessionstore.KeyUser])
	hasSession := token != "" && len(user) > 0

	if apiBase == "" {
		if hasSession {
			a.logger.Warn("app: dropping stored session without a server")
			if err := a.store.Clear(sessionstore.SessionKeys...); err != nil {
				a.logger.WithError(err).Warn("app: clear orphan session failed")
			}
		}
		a.state = Disconnected{LastAddress: values[sessionstore.KeyServerAddress]}
		return a.state, nil
	}

	conn := domain.ServerConnection{Address: values[sessionstore.KeyServerAddress], APIEndpoint: apiBase}
	if !hasSession {
		a.state = Connected{Conn: conn}
		return a.state, nil
	}
	if !user.Valid() {
		a.logger.Warn("app: stored user profile unreadable, logging out")
		if err := a.store.Clear(sessionstore.SessionKeys...); err != nil {
			a.logger.WithError(err).Warn("app: clear session failed")
		}
		a.state = Connected{Conn: conn}
		return a.state, nil
	}
	a.state = Authenticated{Conn: conn, Session: domain.Session{Token: token, User: user}}
	return a.state, nil
}

// State returns the current state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Connect verifies address and moves Disconnected → Connected. On failure the
// state is unchanged and the typed address is remembered for the prompt.
func (a *App) Connect(ctx context.Context, address string) error {
	a.mu.Lock()
	current := a.state
	a.mu.Unlock()
	if _, ok := current.(Disconnected); !ok {
		return fmt.Errorf("%w: connect from %s", ErrInvalidState, current.Name())
	}

	conn, err := a.locator.Connect(ctx, address)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = Disconnected{LastAddress: address}
		return err
	}
	a.state = Connected{Conn: conn}
	return nil
}

// Login moves Connected → Authenticated.
func (a *App) Login(ctx context.Context, username, password string) error {
	a.mu.Lock()
	current := a.state
	a.mu.Unlock()
	connected, ok := current.(Connected)
	if !ok {
		return fmt.Errorf("%w: login from %s", ErrInvalidState, current.Name())
	}

	session, err := a.auth.Login(ctx, connected.Conn, username, password)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Authenticated{Conn: connected.Conn, Session: session}
	return nil
}

// Logout clears the session keys and moves Authenticated → Connected. When the
// keys cannot be cleared the state stays Authenticated and the error matches
// ErrStorage.
func (a *App) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	auth, ok := a.state.(Authenticated)
	if !ok {
		return fmt.Errorf("%w: logout from %s", ErrInvalidState, a.state.Name())
	}
	if err := a.store.Clear(sessionstore.SessionKeys...); err != nil {
		a.logger.WithError(err).Error("app: clear session")
		return fmt.Errorf("%w: clear session: %v", ErrStorage, err)
	}
	a.state = Connected{Conn: auth.Conn}
	a.logger.Info("app: logged out")
	return nil
}

// ChangeServer clears the connection and session keys and returns to
// Disconnected. On a store failure the state is left unchanged.
func (a *App) ChangeServer() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.state.(Disconnected); ok {
		return fmt.Errorf("%w: change server from %s", ErrInvalidState, a.state.Name())
	}
	keys := append(slices.Clone(sessionstore.ConnectionKeys), sessionstore.SessionKeys...)
	if err := a.store.Clear(keys...); err != nil {
		a.logger.WithError(err).Error("app: clear connection")
		return fmt.Errorf("%w: clear connection: %v", ErrStorage, err)
	}
	a.state = Disconnected{}
	a.logger.Info("app: server forgotten")
	return nil
}

// OpenTerminal returns a fresh sale terminal for the current session. The
// caller must Load it.
func (a *App) OpenTerminal() (*Terminal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	auth, ok := a.state.(Authenticated)
	if !ok {
		return nil, fmt.Errorf("%w: open terminal from %s", ErrInvalidState, a.state.Name())
	}
	return NewTerminal(a.client, auth.Conn, auth.Session, a.logger), nil
}
