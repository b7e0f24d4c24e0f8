package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/internal/authority/store"
	"github.com/caseboard/sessionkit/pkg/cryptox"
)

var (
	ErrNoLocalStore     = errors.New("password: no local credential store configured")
	ErrAccountNotFound  = errors.New("password: account not found")
	ErrCurrentMismatch  = errors.New("password: current password incorrect")
	ErrAmbiguousAccount = errors.New("password: identifier matches multiple tenants, tenant id required")
)

// PasswordService manages local credential secrets and the out-of-band
// must-change flag. It operates directly on the store and never touches
// session state; a forced change happens before a session exists.
type PasswordService struct {
	Store  store.Store
	Logger *slog.Logger
}

// MustChange reports whether the identifier is flagged for a forced
// password change. Absent store means nothing is ever flagged.
func (s *PasswordService) MustChange(ctx context.Context, identifier string) (bool, error) {
	if s.Store == nil {
		return false, nil
	}
	return s.Store.Flags().MustChange(ctx, identifier)
}

// Change rotates a local account's secret after verifying the current one.
// When the identifier matches records in several tenants, tenantID selects
// which account changes. Success clears both the per-record flag and the
// out-of-band must-change marker.
func (s *PasswordService) Change(ctx context.Context, identifier, tenantID, current, next string) error {
	if s.Store == nil {
		return ErrNoLocalStore
	}

	records, err := s.Store.Credentials().ListByEmail(ctx, identifier)
	if err != nil {
		return err
	}

	rec, err := selectRecord(records, tenantID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifySecret(current, rec.SecretHash); err != nil {
		s.logger().Warn("password change rejected", "identifier", identifier)
		return ErrCurrentMismatch
	}

	hash, err := cryptox.HashSecret(next)
	if err != nil {
		return err
	}

	if err := s.Store.Credentials().UpdateSecretHash(ctx, rec.ID, hash); err != nil {
		return err
	}
	if err := s.Store.Credentials().SetMustChangePassword(ctx, rec.ID, false); err != nil {
		return err
	}
	if err := s.Store.Flags().ClearMustChange(ctx, identifier); err != nil {
		return err
	}

	s.logger().Info("local password changed", "identifier", identifier, "tenant", rec.TenantID)
	return nil
}

func selectRecord(records []domain.Credential, tenantID string) (domain.Credential, error) {
	switch {
	case len(records) == 0:
		return domain.Credential{}, ErrAccountNotFound
	case tenantID == "" && len(records) == 1:
		return records[0], nil
	case tenantID == "":
		return domain.Credential{}, ErrAmbiguousAccount
	}
	for _, rec := range records {
		if rec.TenantID == tenantID {
			return rec, nil
		}
	}
	return domain.Credential{}, ErrAccountNotFound
}

func (s *PasswordService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
