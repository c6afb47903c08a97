package auth

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrAuthUnavailable = errors.New("authentication backend unavailable")
)

// keyPrefix is the fixed prefix of caller API keys ("cak_" = conversation
// agent key). The first 8 characters of a key are its lookup prefix.
const (
	keyPrefix = "cak_"
	prefixLen = 8
)

// ClientContext identifies the authenticated caller — a conversation backend
// dispatching on behalf of its users.
type ClientContext struct {
	ClientID string
	Name     string
}

// Authenticator validates a caller API key and returns the client context.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*ClientContext, error)
}
