package idp

import (
	"context"
	"net/url"
	"time"
)

// RefreshKind discriminates refresh outcomes.
type RefreshKind int

const (
	// RefreshFailed means the provider rejected the refresh or was
	// unreachable; the session should be treated as expired.
	RefreshFailed RefreshKind = iota
	// RefreshUnchanged means the current token still has more than the
	// requested validity left.
	RefreshUnchanged
	// Refreshed means a new token was issued.
	Refreshed
)

// RefreshResult carries the refresh outcome and, for Refreshed, the new
// access token.
type RefreshResult struct {
	Kind  RefreshKind
	Token string
}

// Refresh asks the provider to extend the current token if it is within
// minValidity of expiry. A stale token actively in use is a worse failure
// mode than a hard logout, so any exchange failure is reported as
// RefreshFailed rather than retried here.
func (c *Connector) Refresh(ctx context.Context, minValidity time.Duration) RefreshResult {
	c.mu.Lock()
	refresh := c.refreshToken
	expiresAt := c.expiresAt
	c.mu.Unlock()

	if refresh == "" {
		return RefreshResult{Kind: RefreshFailed}
	}
	if !expiresAt.IsZero() && time.Until(expiresAt) > minValidity {
		return RefreshResult{Kind: RefreshUnchanged}
	}

	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
		"client_id":     {c.ClientID},
	}

	var tr tokenResponse
	if err := c.postForm(ctx, "/protocol/openid-connect/token", data, &tr); err != nil {
		c.logger().Warn("token refresh failed", "error", err)
		return RefreshResult{Kind: RefreshFailed}
	}
	c.storeTokens(tr)

	return RefreshResult{Kind: Refreshed, Token: tr.AccessToken}
}
