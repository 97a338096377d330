package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/posclient"
	"wilpos-terminal/internal/sessionstore"
)

// HealthChecker probes a backend liveness URL.
type HealthChecker interface {
	Health(ctx context.Context, healthURL string) error
}

// LocatorConfig tunes address resolution and probing.
type LocatorConfig struct {
	ProbeTimeout time.Duration
	DefaultPort  int
}

// DefaultProbeTimeout bounds the liveness probe.
const DefaultProbeTimeout = 5 * time.Second

// Locator verifies a typed server address and persists it once reachable.
type Locator struct {
	checker HealthChecker
	store   sessionstore.Store
	logger  logrus.FieldLogger
	timeout time.Duration
	port    int
}

func NewLocator(checker HealthChecker, store sessionstore.Store, cfg LocatorConfig, logger logrus.FieldLogger) *Locator {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.DefaultPort <= 0 {
		cfg.DefaultPort = DefaultPort
	}
	return &Locator{
		checker: checker,
		store:   store,
		logger:  logger,
		timeout: cfg.ProbeTimeout,
		port:    cfg.DefaultPort,
	}
}

// Connect resolves address, probes its health endpoint and, only on success,
// persists the address and API base. Errors match ErrEmptyAddress,
// ErrUnreachable, ErrRejected or ErrStorage.
func (l *Locator) Connect(ctx context.Context, address string) (domain.ServerConnection, error) {
	conn, healthURL, err := ResolveEndpoint(address, l.port)
	if err != nil {
		return domain.ServerConnection{}, err
	}
	log := l.logger.WithFields(logrus.Fields{"address": conn.Address, "health_url": healthURL})

	probeCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	if err := l.checker.Health(probeCtx, healthURL); err != nil {
		var se *posclient.StatusError
		if errors.As(err, &se) {
			log.WithField("status", se.Code).Warn("locator: health probe rejected")
			return domain.ServerConnection{}, fmt.Errorf("%w: health status %d", ErrRejected, se.Code)
		}
		log.WithError(err).Warn("locator: server unreachable")
		return domain.ServerConnection{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if err := l.store.SaveAll(map[string]string{
		sessionstore.KeyServerAddress: conn.Address,
		sessionstore.KeyAPIBase:       conn.APIEndpoint,
	}); err != nil {
		log.WithError(err).Error("locator: persist connection")
		return domain.ServerConnection{}, fmt.Errorf("%w: persist connection: %v", ErrStorage, err)
	}
	log.WithField("api", conn.APIEndpoint).Info("locator: connected")
	return conn, nil
}
