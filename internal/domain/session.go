package domain

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ServerConnection is a verified backend address.
type ServerConnection struct {
	Address     string // as typed by the user, trimmed
	APIEndpoint string // e.g. http://192.168.1.10:3001/api
}

// Host returns the endpoint without scheme and /api suffix, for display.
func (c ServerConnection) Host() string {
	h := strings.TrimSuffix(c.APIEndpoint, "/api")
	h = strings.TrimPrefix(h, "http://")
	return strings.TrimPrefix(h, "https://")
}

// UserProfile is the backend's user object, kept verbatim so it round-trips
// through local storage without loss.
type UserProfile json.RawMessage

// DisplayName returns nombre, falling back to username.
func (p UserProfile) DisplayName() string {
	for _, field := range []string{"nombre", "username"} {
		if v := gjson.GetBytes(p, field); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	return ""
}

// Valid reports whether the profile holds a JSON object.
func (p UserProfile) Valid() bool {
	return len(p) > 0 && gjson.ValidBytes(p) && gjson.ParseBytes(p).IsObject()
}

// Session is the authenticated context granted by the backend.
type Session struct {
	Token string
	User  UserProfile
}
