package broker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/provider"
	"go.uber.org/zap"
)

var (
	// ErrEmptyUserID means the caller passed no user identity — always a caller bug.
	ErrEmptyUserID = errors.New("broker: empty user id")
	// ErrUnknownProvider means the provider id is not in the catalog.
	ErrUnknownProvider = errors.New("broker: unknown provider")
)

// FailureReason classifies why a token could not be produced.
type FailureReason int

const (
	// NotConnected: the user has no usable token for the provider.
	// Expired and revoked tokens land here too — the remediation is the same.
	NotConnected FailureReason = iota + 1
	// InsufficientScope: a token exists but does not cover the required scopes.
	InsufficientScope
)

// String returns the lowercase reason name.
func (r FailureReason) String() string {
	switch r {
	case NotConnected:
		return "not_connected"
	case InsufficientScope:
		return "insufficient_scope"
	default:
		return "unspecified"
	}
}

// AccessToken is a bearer token handed to a tool for the duration of one
// invocation. Tools never persist it.
type AccessToken struct {
	Value     string
	Scopes    provider.ScopeSet
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// AuthFailure is the structured authorization-failure outcome.
// "User hasn't connected yet" is expected and frequent, so it is a return
// value, never an error.
type AuthFailure struct {
	Provider      string
	Reason        FailureReason
	MissingScopes []string // exact set difference for InsufficientScope; nil for NotConnected
}

// Broker resolves per-user, per-provider access tokens against the external
// identity system. It holds no token cache: token state changes out-of-band
// when an OAuth handshake completes concurrently, so sufficiency is re-checked
// on every call.
type Broker struct {
	catalog  *provider.Catalog
	identity IdentityClient
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Broker backed by the given identity client.
func New(catalog *provider.Catalog, identity IdentityClient, logger *zap.Logger) *Broker {
	return &Broker{
		catalog:  catalog,
		identity: identity,
		logger:   logger,
		now:      time.Now,
	}
}

// AcquireToken returns a valid token covering the required scopes, or an
// AuthFailure describing what the user must grant. The error return is
// reserved for caller bugs and identity-system outages.
//
// required may be empty, meaning any valid token for the provider suffices.
func (b *Broker) AcquireToken(ctx context.Context, userID, providerID string, required provider.ScopeSet) (*AccessToken, *AuthFailure, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil, ErrEmptyUserID
	}
	if _, ok := b.catalog.Get(providerID); !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, providerID)
	}

	rec, err := b.identity.GetToken(ctx, userID, providerID)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, &AuthFailure{Provider: providerID, Reason: NotConnected}, nil
		}
		return nil, nil, fmt.Errorf("AcquireToken: %w", err)
	}

	token := &AccessToken{
		Value:     rec.AccessToken,
		Scopes:    provider.NewScopeSet(rec.GrantedScopes...),
		ExpiresAt: rec.ExpiresAt,
	}

	if token.Expired(b.now()) {
		b.logger.Debug("stored token expired, treating as not connected",
			zap.String("user_id", userID),
			zap.String("provider", providerID),
		)
		return nil, &AuthFailure{Provider: providerID, Reason: NotConnected}, nil
	}

	if !token.Scopes.ContainsAll(required) {
		return nil, &AuthFailure{
			Provider:      providerID,
			Reason:        InsufficientScope,
			MissingScopes: token.Scopes.Missing(required),
		}, nil
	}

	return token, nil, nil
}

// ConnectAction builds the provider-scoped action URI the UI uses to start
// re-authorization. Scopes ride along so the consent screen asks for exactly
// what the blocked operation needs.
func (b *Broker) ConnectAction(providerID string, scopes []string) string {
	if len(scopes) == 0 {
		return "connect://" + providerID
	}
	q := url.Values{"scopes": {strings.Join(scopes, " ")}}
	return "connect://" + providerID + "?" + q.Encode()
}

// ProviderName returns the human name for a provider id.
func (b *Broker) ProviderName(id string) string {
	return b.catalog.Name(id)
}

// AuthorizeURL asks the identity system for a redirect URL that starts the
// OAuth handshake for the given provider and scopes.
func (b *Broker) AuthorizeURL(ctx context.Context, req AuthorizeRequest) (string, error) {
	if _, ok := b.catalog.Get(req.Provider); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}
	return b.identity.AuthorizeURL(ctx, req)
}
