package httpserver

import (
	"encoding/json"

	"wilpos-terminal/internal/wire"
)

// marshalUser renders the login user object. Terminals persist it verbatim,
// so only display fields are included.
func marshalUser(u wire.UserPayload) (json.RawMessage, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return b, nil
}
