// Package posclient talks to the POS backend over HTTP.
package posclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/wire"
)

var (
	// ErrTransport wraps failures to reach the server at all: DNS, refused
	// connections, timeouts, broken bodies.
	ErrTransport = errors.New("transport failure")
	// ErrBadResponse indicates the server answered with something that is not
	// the expected JSON envelope.
	ErrBadResponse = errors.New("unexpected response")
)

// StatusError is returned when a call whose body is ignored gets a non-2xx.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

// Client issues the four backend calls. It holds no session state; callers
// pass the API base and token on each call.
type Client struct {
	http   *http.Client
	logger logrus.FieldLogger
}

// New returns a Client. timeout bounds each request; zero leaves them unbounded.
func New(timeout time.Duration, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NewWithHTTPClient is New with a caller-supplied http.Client.
func NewWithHTTPClient(hc *http.Client, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{http: hc, logger: logger}
}

// Health issues GET healthURL. Any 2xx is success and the body is ignored.
func (c *Client) Health(ctx context.Context, healthURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Login posts credentials. The decoded envelope is returned whatever the HTTP
// status, since rejections carry their message in the body.
func (c *Client) Login(ctx context.Context, apiBase, username, password string) (wire.LoginResponse, error) {
	var out wire.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, joinURL(apiBase, wire.LoginPath), "", wire.LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	return out, err
}

// Products fetches the full catalog. A success:false envelope is an error.
func (c *Client) Products(ctx context.Context, apiBase, token string) ([]domain.Product, error) {
	var out wire.ProductsResponse
	if err := c.doJSON(ctx, http.MethodGet, joinURL(apiBase, wire.ProductsPath), token, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "catalog request rejected"
		}
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, msg)
	}
	products := make([]domain.Product, 0, len(out.Data))
	for _, p := range out.Data {
		products = append(products, p.ToProduct())
	}
	return products, nil
}

// CreateSale posts a sale. As with Login the envelope is returned regardless
// of the HTTP status.
func (c *Client) CreateSale(ctx context.Context, apiBase, token string, draft domain.SaleDraft) (wire.SaleResponse, error) {
	var out wire.SaleResponse
	err := c.doJSON(ctx, http.MethodPost, joinURL(apiBase, wire.SalesPath), token, wire.FromSaleDraft(draft), &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, url, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.WithFields(logrus.Fields{
			"url":    url,
			"status": resp.StatusCode,
		}).WithError(err).Warn("posclient: undecodable response")
		return fmt.Errorf("%w: status %d: %v", ErrBadResponse, resp.StatusCode, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	log := c.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("posclient: request failed")
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"latency": time.Since(start).Truncate(time.Millisecond),
	}).Debug("posclient: response")
	return resp, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
