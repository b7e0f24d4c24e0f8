package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type flagsRepo struct {
	db *sql.DB
}

func (r *flagsRepo) SetMustChange(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_flags (identifier, created_at) VALUES (?, ?)
		 ON CONFLICT (identifier) DO NOTHING`,
		identifier, time.Now().Unix())
	return err
}

func (r *flagsRepo) ClearMustChange(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_flags WHERE identifier = ?`, identifier)
	return err
}

func (r *flagsRepo) MustChange(ctx context.Context, identifier string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM password_flags WHERE identifier = ?`, identifier).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
