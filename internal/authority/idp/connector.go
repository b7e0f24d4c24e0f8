// Package idp talks to the external identity provider: a Keycloak-style
// OIDC realm with a reachability endpoint, a redirect-based authorization
// flow, and a token endpoint for refresh and logout.
//
// The connector is the only place untyped provider data exists. Claims are
// validated and converted into plain string sets before they leave this
// package.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/caseboard/sessionkit/pkg/slogx"
)

// DefaultProbeTimeout bounds the realm reachability check. Probing before
// any handshake is what keeps the login surface responsive when the
// provider is down.
const DefaultProbeTimeout = 3 * time.Second

// Navigator performs a full-page navigation. The dashboard shell supplies
// the real implementation; tests supply a recorder.
type Navigator func(url string)

// Connector drives the delegated login lifecycle against one realm.
type Connector struct {
	// RealmURL is the realm base, e.g. https://sso.example.org/realms/caseboard.
	RealmURL string

	ClientID    string
	RedirectURI string

	HTTPClient   *http.Client
	ProbeTimeout time.Duration
	Navigate     Navigator
	Logger       *slog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// New returns a connector with sane defaults for the given realm.
func New(realmURL, clientID, redirectURI string) *Connector {
	return &Connector{
		RealmURL:     strings.TrimSuffix(realmURL, "/"),
		ClientID:     clientID,
		RedirectURI:  redirectURI,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// Probe issues a lightweight reachability request against the realm
// endpoint. It returns true only for a 2xx response inside the probe
// timeout; timeouts, cancellations, network errors and non-2xx statuses
// all count as unreachable.
func (c *Connector) Probe(ctx context.Context) bool {
	timeout := c.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RealmURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().Debug("realm probe failed", "realm", c.RealmURL, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// RedirectToLogin starts a full delegated login by navigating to the
// realm's authorization endpoint. Fire-and-forget: in a real browser
// context control does not return until the provider redirects back.
func (c *Connector) RedirectToLogin(ctx context.Context) error {
	q := url.Values{
		"client_id":     {c.ClientID},
		"redirect_uri":  {c.RedirectURI},
		"response_type": {"code"},
		"scope":         {"openid"},
	}
	loginURL := c.RealmURL + "/protocol/openid-connect/auth?" + q.Encode()

	if c.Navigate == nil {
		return fmt.Errorf("idp: no navigator configured")
	}
	slogx.FromContext(ctx).Info("redirecting to delegated login", "client_id", c.ClientID)
	c.Navigate(loginURL)
	return nil
}

// Logout ends the delegated session at the provider and navigates to
// redirectURI. The token revocation is best-effort; local state is cleared
// regardless.
func (c *Connector) Logout(ctx context.Context, redirectURI string) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.accessToken = ""
	c.refreshToken = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()

	if refresh != "" {
		data := url.Values{
			"client_id":     {c.ClientID},
			"refresh_token": {refresh},
		}
		if err := c.postForm(ctx, "/protocol/openid-connect/logout", data, nil); err != nil {
			c.logger().Warn("provider logout failed", "error", err)
		}
	}

	if c.Navigate != nil && redirectURI != "" {
		c.Navigate(redirectURI)
	}
	return nil
}

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (c *Connector) postForm(ctx context.Context, path string, data url.Values, out *tokenResponse) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.RealmURL+path,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	return nil
}

func (c *Connector) storeTokens(tr tokenResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = tr.AccessToken
	c.refreshToken = tr.RefreshToken
	c.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
}

func (c *Connector) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Connector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slogx.Discard()
}
