package auth

import (
	"context"
	"strings"
)

// StaticAuthenticator accepts any well-formed cak_ key without a database
// lookup. Local development only.
type StaticAuthenticator struct{}

func NewStaticAuthenticator() *StaticAuthenticator {
	return &StaticAuthenticator{}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, apiKey string) (*ClientContext, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(apiKey) < prefixLen || !strings.HasPrefix(apiKey, keyPrefix) {
		return nil, ErrInvalidAPIKey
	}
	return &ClientContext{ClientID: "dev", Name: "development"}, nil
}
