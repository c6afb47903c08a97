package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrTokenNotFound means the identity system holds no token for the
// user+provider pair.
var ErrTokenNotFound = errors.New("identity: token not found")

// TokenRecord is the identity system's view of a stored grant.
type TokenRecord struct {
	AccessToken   string    `json:"access_token"`
	GrantedScopes []string  `json:"granted_scopes"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// AuthorizeRequest asks the identity system to issue a re-authorization URL.
type AuthorizeRequest struct {
	Provider       string   `json:"provider"`
	UserID         string   `json:"user_id"`
	RequiredScopes []string `json:"required_scopes"`
	RedirectURL    string   `json:"redirect_url"`
	State          string   `json:"state"`
}

// IdentityClient is the consumed interface of the external identity and
// authorization system. Token minting and storage live entirely on its side.
type IdentityClient interface {
	// GetToken returns the user's current token for a provider.
	// Returns ErrTokenNotFound when the user never connected the provider.
	GetToken(ctx context.Context, userID, providerID string) (*TokenRecord, error)

	// AuthorizeURL returns a URL to redirect the user to for (re-)authorization.
	AuthorizeURL(ctx context.Context, req AuthorizeRequest) (string, error)
}

// HTTPIdentityClient talks JSON over HTTP to the identity service.
type HTTPIdentityClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPIdentityClient creates a client for the identity service at baseURL.
func NewHTTPIdentityClient(baseURL string, logger *zap.Logger) *HTTPIdentityClient {
	return &HTTPIdentityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (c *HTTPIdentityClient) GetToken(ctx context.Context, userID, providerID string) (*TokenRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/tokens/%s/%s",
		c.baseURL, url.PathEscape(userID), url.PathEscape(providerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("GetToken: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GetToken: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		var rec TokenRecord
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, fmt.Errorf("GetToken: decode: %w", err)
		}
		return &rec, nil
	case http.StatusNotFound:
		return nil, ErrTokenNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GetToken: identity service returned %d: %s", resp.StatusCode, body)
	}
}

func (c *HTTPIdentityClient) AuthorizeURL(ctx context.Context, areq AuthorizeRequest) (string, error) {
	payload, err := json.Marshal(areq)
	if err != nil {
		return "", fmt.Errorf("AuthorizeURL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/authorize-url", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("AuthorizeURL: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("AuthorizeURL: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("AuthorizeURL: identity service returned %d: %s", resp.StatusCode, body)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("AuthorizeURL: decode: %w", err)
	}
	return out.URL, nil
}
