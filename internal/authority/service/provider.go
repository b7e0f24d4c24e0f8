package service

import (
	"context"
	"time"

	"github.com/caseboard/sessionkit/internal/authority/idp"
)

// IdentityProvider is the connector surface the session authority drives.
// *idp.Connector is the production implementation; tests substitute fakes.
type IdentityProvider interface {
	Probe(ctx context.Context) bool
	InitHandshake(ctx context.Context, cb idp.Callback) (idp.HandshakeResult, error)
	RedirectToLogin(ctx context.Context) error
	Refresh(ctx context.Context, minValidity time.Duration) idp.RefreshResult
	Logout(ctx context.Context, redirectURI string) error
}
