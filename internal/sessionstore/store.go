// Package sessionstore persists the terminal's connection and session across
// restarts as a small set of string keys.
package sessionstore

import "errors"

// Persisted keys.
const (
	KeyServerAddress = "wilpos_server_ip"
	KeyAPIBase       = "wilpos_api_url"
	KeyToken         = "wilpos_token"
	KeyUser          = "wilpos_user"
)

// ConnectionKeys are cleared when the user changes server.
var ConnectionKeys = []string{KeyServerAddress, KeyAPIBase}

// SessionKeys are cleared on logout.
var SessionKeys = []string{KeyToken, KeyUser}

// AllKeys lists every key the terminal reads at startup.
var AllKeys = []string{KeyServerAddress, KeyAPIBase, KeyToken, KeyUser}

// ErrCorrupt is returned by Load when the backing file cannot be parsed.
var ErrCorrupt = errors.New("session store corrupt")

// Store is process-wide key/value state. Implementations must apply SaveAll and
// Clear atomically so a reader never sees half of a connection or session.
type Store interface {
	// Load returns a copy of every stored key.
	Load() (map[string]string, error)
	Save(key, value string) error
	SaveAll(values map[string]string) error
	Clear(keys ...string) error
}
