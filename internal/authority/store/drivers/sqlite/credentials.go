package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/internal/authority/store"
)

type credentialsRepo struct {
	db *sql.DB
}

const credentialColumns = `id, email, secret_hash, display_name, role_label,
	tenant_id, tenant_name, must_change_password, totp_secret, created_at, updated_at`

func (r *credentialsRepo) ListByEmail(ctx context.Context, email string) ([]domain.Credential, error) {
	// rowid order is insertion order, which is the discovery order the
	// tenant picker preserves.
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE email = ? ORDER BY rowid`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	now := time.Now().Unix()
	createdAt := now
	if !c.CreatedAt.IsZero() {
		createdAt = c.CreatedAt.Unix()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (`+credentialColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Email, c.SecretHash, c.DisplayName, c.RoleLabel,
		c.TenantID, c.TenantName, boolToInt(c.MustChangePassword), c.TOTPSecret,
		createdAt, now,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *credentialsRepo) UpdateSecretHash(ctx context.Context, id string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE credentials SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *credentialsRepo) SetMustChangePassword(ctx context.Context, id string, v bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE credentials SET must_change_password = ?, updated_at = ? WHERE id = ?`,
		boolToInt(v), time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *credentialsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanCredential(rows *sql.Rows) (domain.Credential, error) {
	var (
		c          domain.Credential
		mustChange int
		createdAt  int64
		updatedAt  int64
	)
	err := rows.Scan(
		&c.ID, &c.Email, &c.SecretHash, &c.DisplayName, &c.RoleLabel,
		&c.TenantID, &c.TenantName, &mustChange, &c.TOTPSecret,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Credential{}, err
	}
	c.MustChangePassword = mustChange != 0
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return c, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
