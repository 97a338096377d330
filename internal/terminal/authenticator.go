package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/sessionstore"
	"wilpos-terminal/internal/wire"
)

// LoginClient exchanges credentials for a token.
type LoginClient interface {
	Login(ctx context.Context, apiBase, username, password string) (wire.LoginResponse, error)
}

// Authenticator turns credentials into a persisted Session.
type Authenticator struct {
	client LoginClient
	store  sessionstore.Store
	logger logrus.FieldLogger
}

func NewAuthenticator(client LoginClient, store sessionstore.Store, logger logrus.FieldLogger) *Authenticator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Authenticator{client: client, store: store, logger: logger}
}

// Login issues one login call against conn. Every call is independent: there
// is no de-duplication and no rate limiting.
func (a *Authenticator) Login(ctx context.Context, conn domain.ServerConnection, username, password string) (domain.Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.Session{}, ErrMissingCredentials
	}
	log := a.logger.WithFields(logrus.Fields{"username": username, "api": conn.APIEndpoint})

	resp, err := a.client.Login(ctx, conn.APIEndpoint, username, password)
	if err != nil {
		log.WithError(err).Warn("auth: login call failed")
		return domain.Session{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if !resp.Success || resp.Token == "" {
		log.WithField("message", resp.Message).Info("auth: login rejected")
		return domain.Session{}, &RejectedError{Message: resp.Message}
	}

	user := domain.UserProfile(resp.User)
	if !user.Valid() {
		user = domain.UserProfile(`{}`)
	}
	if err := a.store.SaveAll(map[string]string{
		sessionstore.KeyToken: resp.Token,
		sessionstore.KeyUser:  string(user),
	}); err != nil {
		log.WithError(err).Error("auth: persist session")
		return domain.Session{}, fmt.Errorf("%w: persist session: %v", ErrStorage, err)
	}
	log.Info("auth: session established")
	return domain.Session{Token: resp.Token, User: user}, nil
}
