package terminal

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"wilpos-terminal/internal/domain"
)

// DefaultPort is the backend port assumed when the user types none.
const DefaultPort = 3001

// ResolveEndpoint turns a typed address into a candidate connection and the
// URL of its health probe. "192.168.1.10" becomes
// http://192.168.1.10:3001/api, probed at http://192.168.1.10:3001/health.
func ResolveEndpoint(address string, defaultPort int) (domain.ServerConnection, string, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return domain.ServerConnection{}, "", ErrEmptyAddress
	}
	if defaultPort <= 0 {
		defaultPort = DefaultPort
	}

	raw := addr
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return domain.ServerConnection{}, "", fmt.Errorf("%w: invalid address %q", ErrUnreachable, addr)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.ServerConnection{}, "", fmt.Errorf("%w: unsupported scheme %q", ErrUnreachable, u.Scheme)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(defaultPort))
	}

	base := u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}
	health := strings.TrimSuffix(base, "/api") + "/health"

	return domain.ServerConnection{Address: addr, APIEndpoint: base}, health, nil
}
