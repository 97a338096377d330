package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/metrics"
	authsvc "wilpos-terminal/internal/service/auth"
	"wilpos-terminal/internal/wire"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "user"
)

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).Truncate(time.Microsecond),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(requestIDKey),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("http: request")
		case status >= 400:
			entry.Warn("http: request")
		default:
			entry.Info("http: request")
		}
	}
}

// bearerAuth resolves the Authorization header to a user.
func bearerAuth(auth AuthService, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Success: false, Message: "missing bearer token"})
			return
		}
		u, err := auth.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Success: false, Message: "invalid or expired token"})
				return
			}
			logger.WithError(err).Error("http: token lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, wire.ErrorResponse{Success: false, Message: "internal error"})
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	u, _ := c.Get(userKey)
	user, _ := u.(*domain.User)
	return user
}

// loginLimiter throttles login attempts per client IP.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
}

// newLoginLimiter allows perMinute attempts per IP; zero or less disables it.
func newLoginLimiter(perMinute int, m *metrics.Metrics, logger logrus.FieldLogger) *loginLimiter {
	l := &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Inf,
		metrics:  m,
		logger:   logger,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

func (l *loginLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.limiters) > 10000 {
		l.limiters = make(map[string]*rate.Limiter)
	}
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

func (l *loginLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit == rate.Inf {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.get(ip).Allow() {
			l.logger.WithField("client_ip", ip).Warn("http: login rate limit exceeded")
			l.metrics.RecordLogin("limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, wire.LoginResponse{Success: false, Message: "too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}
