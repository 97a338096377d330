// Package terminal implements the point-of-sale client: locating a server,
// authenticating a cashier and running the sale terminal.
package terminal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAddress is returned before any network call when the address is blank.
	ErrEmptyAddress = errors.New("server address required")
	// ErrUnreachable covers probe timeouts, network errors and unusable addresses.
	ErrUnreachable = errors.New("server unreachable")
	// ErrRejected means the server answered but refused the request.
	ErrRejected = errors.New("rejected by server")
	// ErrConnection wraps transport failures on login and sale calls.
	ErrConnection = errors.New("could not reach server")
	// ErrMissingCredentials is returned before any network call.
	ErrMissingCredentials = errors.New("username and password required")
	// ErrStorage wraps session store failures; state is left unchanged.
	ErrStorage = errors.New("session store failure")

	ErrEmptyCart      = errors.New("cart is empty")
	ErrSubmitInFlight = errors.New("a sale is already being submitted")
	ErrNotReady       = errors.New("terminal not ready")
	ErrUnknownProduct = errors.New("product not in catalog")
	ErrInvalidState   = errors.New("operation not allowed in current state")
)

// RejectedError carries the server's explanation for a refused login or sale.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return fmt.Sprintf("%s: %s", ErrRejected, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// User-facing texts.
const (
	msgEnterAddress     = "Enter the server address"
	msgServerNotFound   = "Server not found. Check the address."
	msgEnterCredentials = "Enter username and password"
	msgAuthFailed       = "Authentication failed"
	msgNoConnection     = "Could not connect to the server"
	msgSaleFailed       = "Could not process the sale"
	msgSaleConnection   = "Connection error"
	msgStorage          = "Could not save the session on this device"
)

// LocatorMessage maps a Locator error to the single message shown on the
// server screen.
func LocatorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyAddress):
		return msgEnterAddress
	case errors.Is(err, ErrStorage):
		return msgStorage
	default:
		return msgServerNotFound
	}
}

// LoginMessage maps an Authenticator error to the message shown on the login screen.
func LoginMessage(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredentials):
		return msgEnterCredentials
	case errors.Is(err, ErrStorage):
		return msgStorage
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return rejected.Message
		}
		return msgAuthFailed
	default:
		return msgNoConnection
	}
}
