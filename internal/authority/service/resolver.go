package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/internal/authority/store"
	"github.com/caseboard/sessionkit/pkg/cryptox"
)

// builtinAccount is a fixed development account. Built-ins always win over
// the persisted store and remain available when no store exists at all.
type builtinAccount struct {
	Identifier string
	Secret     string
	Token      string // fixed token; empty means one is synthesized
	Identity   domain.Identity
}

var builtinAccounts = []builtinAccount{
	{
		Identifier: "admin",
		Secret:     "admin_dev",
		Token:      domain.BypassToken,
		Identity: domain.Identity{
			ID:          "builtin-admin",
			Username:    "admin",
			Email:       "admin@caseboard.local",
			DisplayName: "Platform Administrator",
			Roles:       []domain.Role{domain.RoleAdmin, domain.RoleAnalyst, domain.RoleInvestigator, domain.RoleViewer},
			TenantID:    "tenant-hq",
			TenantName:  "Headquarters",
		},
	},
	{
		Identifier: "observer",
		Secret:     "observer_dev",
		Identity: domain.Identity{
			ID:          "builtin-observer",
			Username:    "observer",
			Email:       "observer@caseboard.local",
			DisplayName: "Read-Only Observer",
			Roles:       []domain.Role{domain.RoleViewer},
			TenantID:    "tenant-hq",
			TenantName:  "Headquarters",
		},
	},
}

// bypassIdentity is the fixed admin-equivalent identity used when SSO is
// requested but the provider is unreachable. It deliberately shares the
// built-in admin's shape so downstream rendering needs no special case; the
// sentinel token is what marks the session as a bypass.
func bypassIdentity() *domain.Identity {
	return builtinAccounts[0].Identity.Clone()
}

// ResolverService resolves an (identifier, secret, tenant-hint) triple
// against built-in accounts and the persisted credential store. Resolution
// is pure against the store snapshot and never returns an error: a missing
// or corrupt store degrades to "no local accounts".
type ResolverService struct {
	Store  store.Store // nil when no local store is configured
	Logger *slog.Logger
}

// Resolve implements the resolution priority order: built-ins first, then
// the store scan, then tenant-hint narrowing, then the single/ambiguous
// split with discovery order preserved.
func (s *ResolverService) Resolve(ctx context.Context, identifier, secret, tenantHint string) domain.Resolution {
	for _, b := range builtinAccounts {
		if b.Identifier == identifier && b.Secret == secret {
			return domain.Resolution{
				Kind:     domain.ResolutionSingle,
				Identity: b.Identity.Clone(),
				BuiltIn:  true,
				Token:    b.Token,
			}
		}
	}

	if s.Store == nil {
		return domain.Resolution{Kind: domain.ResolutionNone}
	}

	records, err := s.Store.Credentials().ListByEmail(ctx, identifier)
	if err != nil {
		s.logger().Warn("credential store read failed, treating as empty", "error", err)
		return domain.Resolution{Kind: domain.ResolutionNone}
	}

	var matched []domain.Credential
	for _, rec := range records {
		if cryptox.VerifySecret(secret, rec.SecretHash) == nil {
			matched = append(matched, rec)
		}
	}

	if tenantHint != "" && len(matched) > 1 {
		if narrowed := narrowByTenantHint(matched, tenantHint); len(narrowed) > 0 {
			matched = narrowed
		}
	}

	switch len(matched) {
	case 0:
		return domain.Resolution{Kind: domain.ResolutionNone}
	case 1:
		rec := matched[0]
		return domain.Resolution{
			Kind:       domain.ResolutionSingle,
			Identity:   identityFromCredential(rec),
			Credential: &rec,
		}
	default:
		return domain.Resolution{
			Kind:    domain.ResolutionAmbiguous,
			Choices: matched,
		}
	}
}

// narrowByTenantHint keeps records whose tenant id equals the hint, equals
// "tenant-<hint>", or whose tenant display name contains the hint
// case-insensitively. A hint that matches nothing leaves the full set
// untouched; callers still get the whole ambiguity to disambiguate.
func narrowByTenantHint(matched []domain.Credential, hint string) []domain.Credential {
	lowered := strings.ToLower(hint)
	var narrowed []domain.Credential
	for _, rec := range matched {
		switch {
		case rec.TenantID == hint,
			rec.TenantID == "tenant-"+hint,
			strings.Contains(strings.ToLower(rec.TenantName), lowered):
			narrowed = append(narrowed, rec)
		}
	}
	return narrowed
}

func identityFromCredential(rec domain.Credential) *domain.Identity {
	return &domain.Identity{
		ID:          rec.ID,
		Username:    rec.Email,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Roles:       domain.MapLocalRoleLabel(rec.RoleLabel),
		TenantID:    rec.TenantID,
		TenantName:  rec.TenantName,
	}
}

func (s *ResolverService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
