package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound covers both "no such account" and "refresh token no
	// longer matches any account" (superseded or cleared).
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateIdentity surfaces the storage unique-constraint
	// violation on canonical_key. The resolver treats it as "found" and
	// retries the update path; it is never user-visible.
	ErrDuplicateIdentity = errors.New("duplicate identity")
)

// Repository is the storage contract for accounts. Lookups exclude
// withdrawn accounts unless noted otherwise.
type Repository interface {
	// FindByCanonicalKey returns the live account for the key.
	FindByCanonicalKey(ctx context.Context, key string) (*Account, error)

	// FindByEmail returns the account for the email, including withdrawn
	// ones. Signup uses it to reject emails with a withdrawal history.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByRefreshToken returns the live account whose current refresh
	// token equals tok.
	FindByRefreshToken(ctx context.Context, tok string) (*Account, error)

	// Create inserts a new account. A canonical-key collision returns
	// ErrDuplicateIdentity.
	Create(ctx context.Context, a *Account) (*Account, error)

	// UpdateProfile overwrites email/display_name/avatar_url with the
	// values in a. Field-level overwrite policy is the resolver's job.
	UpdateProfile(ctx context.Context, a *Account) error

	// SetRefreshToken unconditionally replaces the stored refresh token
	// (login path).
	SetRefreshToken(ctx context.Context, id string, tok string) error

	// RotateRefreshToken swaps old for new only if old is still the
	// stored value. Returns ErrNotFound when it no longer matches, which
	// is how a lost concurrent rotation surfaces.
	RotateRefreshToken(ctx context.Context, id string, old, new string) error

	// ClearRefreshToken removes the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, id string) error

	// Withdraw soft-deletes the account and clears the refresh token.
	Withdraw(ctx context.Context, id string) error
}
