package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ClientStore abstracts the DB query for testability.
type ClientStore interface {
	LookupByPrefix(ctx context.Context, prefix string) (*clientRow, error)
}

type clientRow struct {
	ClientID   string
	Name       string
	APIKeyHash string
	Disabled   bool
}

// sqlClientStore is the real implementation using *sql.DB.
type sqlClientStore struct {
	db *sql.DB
}

func (s *sqlClientStore) LookupByPrefix(ctx context.Context, prefix string) (*clientRow, error) {
	row := &clientRow{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, api_key_hash, disabled
		FROM api_clients
		WHERE api_key_prefix = $1`,
		prefix,
	).Scan(&row.ClientID, &row.Name, &row.APIKeyHash, &row.Disabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("sqlClientStore.LookupByPrefix: %w", err)
	}
	return row, nil
}

// PostgresAuthenticator validates caller API keys against the api_clients
// table, with the stale-while-revalidate cache in front of DB + bcrypt.
type PostgresAuthenticator struct {
	store  ClientStore
	cache  *AuthCache
	logger *zap.Logger
}

// PostgresAuthConfig configures the PostgresAuthenticator.
type PostgresAuthConfig struct {
	DB       *sql.DB
	CacheTTL time.Duration // default 30s
	Logger   *zap.Logger
}

// NewPostgresAuthenticator creates an authenticator backed by PostgreSQL.
func NewPostgresAuthenticator(cfg PostgresAuthConfig) *PostgresAuthenticator {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	return &PostgresAuthenticator{
		store:  &sqlClientStore{db: cfg.DB},
		cache:  NewAuthCache(ttl),
		logger: cfg.Logger,
	}
}

// newPostgresAuthenticatorWithStore injects a store for testing.
func newPostgresAuthenticatorWithStore(store ClientStore, cache *AuthCache, logger *zap.Logger) *PostgresAuthenticator {
	return &PostgresAuthenticator{store: store, cache: cache, logger: logger}
}

func (a *PostgresAuthenticator) Authenticate(ctx context.Context, apiKey string) (*ClientContext, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(apiKey) < prefixLen || !strings.HasPrefix(apiKey, keyPrefix) {
		return nil, ErrInvalidAPIKey
	}

	result := a.cache.Get(apiKey)
	if result.Hit {
		if result.NeedsRefresh {
			go a.backgroundRefresh(apiKey)
		}
		if result.Client == nil {
			return nil, ErrInvalidAPIKey // negative cache
		}
		return result.Client, nil
	}

	client, err := a.lookupAndVerify(ctx, apiKey)
	if err != nil {
		if errors.Is(err, ErrInvalidAPIKey) {
			return nil, ErrInvalidAPIKey
		}
		a.logger.Warn("auth DB unreachable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	a.cache.Set(apiKey, client)
	return client, nil
}

// backgroundRefresh re-verifies the key off the request path. The caller
// already got the stale value; on error the entry is evicted so the next
// stale read retries.
func (a *PostgresAuthenticator) backgroundRefresh(apiKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := a.lookupAndVerify(ctx, apiKey)
	if err != nil {
		a.logger.Warn("background auth refresh failed", zap.Error(err))
		a.cache.Delete(apiKey)
		return
	}
	a.cache.Set(apiKey, client)
}

func (a *PostgresAuthenticator) lookupAndVerify(ctx context.Context, apiKey string) (*ClientContext, error) {
	row, err := a.store.LookupByPrefix(ctx, apiKey[:prefixLen])
	if err != nil {
		return nil, err
	}
	if row.Disabled {
		return nil, ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, ErrInvalidAPIKey
	}
	return &ClientContext{ClientID: row.ClientID, Name: row.Name}, nil
}
