package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/OneBiteArticle/oba-backend/internal/db"
)

// PostgresRepository stores accounts in the accounts table.
type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `
	id, canonical_key, email, display_name, avatar_url, role,
	password_hash, current_refresh_token, created_at, updated_at, deleted_at`

func (r *PostgresRepository) FindByCanonicalKey(ctx context.Context, key string) (*Account, error) {
	return r.findOne(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE canonical_key = $1
		  AND deleted_at IS NULL
	`, key)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findOne(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)
}

func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, tok string) (*Account, error) {
	if tok == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE current_refresh_token = $1
		  AND deleted_at IS NULL
	`, tok)
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (canonical_key, email, display_name, avatar_url, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		a.CanonicalKey,
		a.Email,
		a.DisplayName,
		a.AvatarURL,
		string(a.Role),
		a.PasswordHash,
	)

	created := *a
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("account: create: %w", err)
	}
	return &created, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, a *Account) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = $2,
		    display_name = $3,
		    avatar_url = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND deleted_at IS NULL
	`, a.ID, a.Email, a.DisplayName, a.AvatarURL)
	if err != nil {
		return fmt.Errorf("account: update profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id string, tok string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET current_refresh_token = $2, updated_at = NOW()
		WHERE id = $1
		  AND deleted_at IS NULL
	`, id, tok)
	if err != nil {
		return fmt.Errorf("account: set refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken is a compare-and-swap: the write lands only if the
// presented token is still the stored one. Two concurrent reissues with
// the same refresh token race here, and exactly one wins.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, id string, old, new string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET current_refresh_token = $3, updated_at = NOW()
		WHERE id = $1
		  AND current_refresh_token = $2
		  AND deleted_at IS NULL
	`, id, old, new)
	if err != nil {
		return fmt.Errorf("account: rotate refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("account: rotate refresh token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET current_refresh_token = '', updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("account: clear refresh token: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Withdraw(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET deleted_at = NOW(),
		    current_refresh_token = '',
		    updated_at = NOW()
		WHERE id = $1
		  AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("account: withdraw: %w", err)
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*Account, error) {
	var (
		a         Account
		role      string
		deletedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID,
		&a.CanonicalKey,
		&a.Email,
		&a.DisplayName,
		&a.AvatarURL,
		&role,
		&a.PasswordHash,
		&a.CurrentRefreshToken,
		&a.CreatedAt,
		&a.UpdatedAt,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account: query: %w", err)
	}
	a.Role = Role(role)
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return &a, nil
}
