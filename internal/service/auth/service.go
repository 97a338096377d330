package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	tokenrepo "wilpos-terminal/internal/repository/token"
	userrepo "wilpos-terminal/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when username/password do not match
	// an active user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service authenticates cashiers and resolves bearer tokens.
type Service struct {
	users    userrepo.Repository
	tokens   *tokenManager
	tokenTTL time.Duration
	logger   logrus.FieldLogger
}

// New creates a Service issuing tokens valid for tokenTTL.
func New(users userrepo.Repository, tokens tokenrepo.Repository, tokenTTL time.Duration, logger logrus.FieldLogger) *Service {
	return newWithClock(users, tokens, tokenTTL, logger, time.Now)
}

func newWithClock(users userrepo.Repository, tokens tokenrepo.Repository, tokenTTL time.Duration, logger logrus.FieldLogger, now func() time.Time) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{
		users:    users,
		tokens:   newTokenManager(tokens, now),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Login validates credentials and returns the user plus a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WithField("username", username).Info("auth: unknown user")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !u.Active {
		s.logger.WithField("username", username).Info("auth: inactive user")
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("username", username).Info("auth: wrong password")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, u.ID, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.WithFields(logrus.Fields{"username": u.Username, "user_id": u.ID}).Info("auth: token issued")
	return u, token, nil
}

// LookupByToken returns the active user bound to a valid token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// PurgeExpired deletes every expired token.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.repo.DeleteExpired(ctx, s.tokens.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("count", n).Info("auth: expired tokens purged")
	}
	return n, nil
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
