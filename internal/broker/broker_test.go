package broker

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/provider"
	"go.uber.org/zap"
)

// fakeIdentity is a test helper holding per-user, per-provider token records.
type fakeIdentity struct {
	records map[string]*TokenRecord // key: userID + "/" + providerID
	err     error
	calls   int
}

func (f *fakeIdentity) GetToken(_ context.Context, userID, providerID string) (*TokenRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[userID+"/"+providerID]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return rec, nil
}

func (f *fakeIdentity) AuthorizeURL(_ context.Context, req AuthorizeRequest) (string, error) {
	return "https://id.example.com/oauth/authorize?provider=" + req.Provider, nil
}

func testCatalog(t *testing.T) *provider.Catalog {
	t.Helper()
	cat, err := provider.NewCatalog([]provider.Provider{
		{ID: "custom-crm", Name: "CRM"},
		{ID: "google-calendar", Name: "Google Calendar"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func newTestBroker(t *testing.T, identity IdentityClient) *Broker {
	t.Helper()
	return New(testCatalog(t), identity, zap.NewNop())
}

func futureExpiry() time.Time {
	return time.Now().Add(time.Hour)
}

func TestAcquireToken_SupersetGrantSucceeds(t *testing.T) {
	// For any S1 ⊆ S2: a token granting S2 satisfies a requirement of S1.
	granted := []string{"deals:read", "deals:write", "contacts:read"}
	identity := &fakeIdentity{records: map[string]*TokenRecord{
		"u1/custom-crm": {AccessToken: "tok-1", GrantedScopes: granted, ExpiresAt: futureExpiry()},
	}}
	b := newTestBroker(t, identity)

	subsets := [][]string{
		nil,
		{"deals:read"},
		{"deals:read", "contacts:read"},
		granted,
	}
	for _, required := range subsets {
		tok, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", provider.NewScopeSet(required...))
		if err != nil {
			t.Fatalf("required=%v: unexpected error: %v", required, err)
		}
		if fail != nil {
			t.Fatalf("required=%v: unexpected auth failure: %+v", required, fail)
		}
		if tok.Value != "tok-1" {
			t.Fatalf("required=%v: wrong token %q", required, tok.Value)
		}
	}
}

func TestAcquireToken_InsufficientScope_ExactDifference(t *testing.T) {
	identity := &fakeIdentity{records: map[string]*TokenRecord{
		"u1/custom-crm": {
			AccessToken:   "tok-1",
			GrantedScopes: []string{"contacts:read"},
			ExpiresAt:     futureExpiry(),
		},
	}}
	b := newTestBroker(t, identity)

	required := provider.NewScopeSet("contacts:read", "deals:read", "deals:write")
	tok, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", required)
	if err != nil {
		t.Fatal(err)
	}
	if tok != nil {
		t.Fatal("expected no token")
	}
	if fail == nil || fail.Reason != InsufficientScope {
		t.Fatalf("expected InsufficientScope, got %+v", fail)
	}
	// Missing scopes are exactly R \ G: no extra, no missing entries.
	want := []string{"deals:read", "deals:write"}
	if !reflect.DeepEqual(fail.MissingScopes, want) {
		t.Fatalf("missing scopes = %v, want %v", fail.MissingScopes, want)
	}
}

func TestAcquireToken_NoStoredToken_NotConnected(t *testing.T) {
	b := newTestBroker(t, &fakeIdentity{})

	tok, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", provider.NewScopeSet("deals:read"))
	if err != nil {
		t.Fatal(err)
	}
	if tok != nil {
		t.Fatal("expected no token")
	}
	if fail == nil || fail.Reason != NotConnected {
		t.Fatalf("expected NotConnected, got %+v", fail)
	}
	if fail.Provider != "custom-crm" {
		t.Fatalf("wrong provider: %s", fail.Provider)
	}
}

func TestAcquireToken_ExpiredToken_NotConnected(t *testing.T) {
	identity := &fakeIdentity{records: map[string]*TokenRecord{
		"u1/custom-crm": {
			AccessToken:   "tok-old",
			GrantedScopes: []string{"deals:read"},
			ExpiresAt:     time.Now().Add(-time.Minute),
		},
	}}
	b := newTestBroker(t, identity)

	_, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", provider.NewScopeSet("deals:read"))
	if err != nil {
		t.Fatal(err)
	}
	if fail == nil || fail.Reason != NotConnected {
		t.Fatalf("expected NotConnected for expired token, got %+v", fail)
	}
}

func TestAcquireToken_EmptyRequiredScopes_AnyTokenSuffices(t *testing.T) {
	identity := &fakeIdentity{records: map[string]*TokenRecord{
		"u1/custom-crm": {AccessToken: "tok-1", GrantedScopes: nil, ExpiresAt: futureExpiry()},
	}}
	b := newTestBroker(t, identity)

	tok, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", nil)
	if err != nil || fail != nil {
		t.Fatalf("expected success, got fail=%+v err=%v", fail, err)
	}
	if tok.Value != "tok-1" {
		t.Fatalf("wrong token %q", tok.Value)
	}
}

func TestAcquireToken_CallerBugs(t *testing.T) {
	b := newTestBroker(t, &fakeIdentity{})

	_, _, err := b.AcquireToken(context.Background(), "", "custom-crm", nil)
	if !errors.Is(err, ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}

	_, _, err = b.AcquireToken(context.Background(), "u1", "no-such-provider", nil)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestAcquireToken_IdentityOutageIsError(t *testing.T) {
	identity := &fakeIdentity{err: errors.New("connection refused")}
	b := newTestBroker(t, identity)

	_, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", nil)
	if err == nil {
		t.Fatal("expected error on identity outage")
	}
	if fail != nil {
		t.Fatalf("outage must not look like an auth failure: %+v", fail)
	}
}

func TestAcquireToken_NoCaching_EveryCallChecksIdentity(t *testing.T) {
	// Token state changes out-of-band when an OAuth handshake completes,
	// so scope sufficiency is re-validated on every call.
	identity := &fakeIdentity{records: map[string]*TokenRecord{
		"u1/custom-crm": {AccessToken: "tok-1", GrantedScopes: []string{"deals:read"}, ExpiresAt: futureExpiry()},
	}}
	b := newTestBroker(t, identity)

	for i := 0; i < 3; i++ {
		if _, fail, err := b.AcquireToken(context.Background(), "u1", "custom-crm", provider.NewScopeSet("deals:read")); err != nil || fail != nil {
			t.Fatalf("call %d failed: fail=%+v err=%v", i, fail, err)
		}
	}
	if identity.calls != 3 {
		t.Fatalf("expected 3 identity lookups, got %d", identity.calls)
	}
}

func TestConnectAction(t *testing.T) {
	b := newTestBroker(t, &fakeIdentity{})

	if got := b.ConnectAction("custom-crm", nil); got != "connect://custom-crm" {
		t.Fatalf("unexpected action: %s", got)
	}

	got := b.ConnectAction("custom-crm", []string{"deals:read", "notes:read"})
	want := "connect://custom-crm?scopes=deals%3Aread+notes%3Aread"
	if got != want {
		t.Fatalf("action = %s, want %s", got, want)
	}
}

func TestAuthorizeURL_UnknownProvider(t *testing.T) {
	b := newTestBroker(t, &fakeIdentity{})

	_, err := b.AuthorizeURL(context.Background(), AuthorizeRequest{Provider: "nope", UserID: "u1"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}
