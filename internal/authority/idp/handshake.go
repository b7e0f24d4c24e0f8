package idp

import (
	"context"
	"net/url"
)

// Callback is the in-flight redirect context: the authorization code the
// provider appended to the current navigation, if any.
type Callback struct {
	Code  string
	State string
}

// HandshakeResult reports the outcome of processing a redirect callback.
// When no code is pending, Authenticated is false and every other field is
// zero; the handshake never resurrects a session on its own.
type HandshakeResult struct {
	Authenticated bool
	Token         string
	Profile       Profile
	Roles         []string
}

// InitHandshake processes only an in-flight redirect callback. A session
// start with no pending code always comes back unauthenticated, no matter
// what the provider may have cached from a previous run: every session
// start shows a login surface unless the user is mid-redirect.
func (c *Connector) InitHandshake(ctx context.Context, cb Callback) (HandshakeResult, error) {
	if cb.Code == "" {
		return HandshakeResult{}, nil
	}

	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {cb.Code},
		"client_id":    {c.ClientID},
		"redirect_uri": {c.RedirectURI},
	}

	var tr tokenResponse
	if err := c.postForm(ctx, "/protocol/openid-connect/token", data, &tr); err != nil {
		return HandshakeResult{}, err
	}
	c.storeTokens(tr)

	profile, roles := parseAccessToken(tr.AccessToken)
	return HandshakeResult{
		Authenticated: true,
		Token:         tr.AccessToken,
		Profile:       profile,
		Roles:         roles,
	}, nil
}
