package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/auth"
)

// Resolver maps a normalized external identity to a durable account,
// idempotently. It is the only place where identity-to-account mapping
// logic lives.
type Resolver struct {
	repo Repository
	log  *zap.Logger
}

func NewResolver(repo Repository, log *zap.Logger) *Resolver {
	return &Resolver{repo: repo, log: log}
}

// Resolve finds or creates the account for the identity's canonical key.
//
// Found accounts get their profile fields refreshed with the values from
// this login; a field is only overwritten when the incoming value is
// non-empty, so an email withheld on a repeat login never erases a
// previously known one.
//
// First logins insert with role USER. Two concurrent first logins for the
// same identity both reach the insert; the unique constraint on
// canonical_key rejects the loser, which then re-reads and takes the
// update path.
func (r *Resolver) Resolve(ctx context.Context, identity *auth.Identity) (*Account, error) {
	if identity == nil {
		return nil, errors.New("account: identity is nil")
	}
	key := identity.CanonicalKey()

	existing, err := r.repo.FindByCanonicalKey(ctx, key)
	if err == nil {
		return r.refreshProfile(ctx, existing, identity)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created, err := r.repo.Create(ctx, &Account{
		CanonicalKey: key,
		Email:        identity.Email,
		DisplayName:  identity.DisplayName,
		AvatarURL:    identity.AvatarURL,
		Role:         RoleUser,
	})
	if err == nil {
		r.log.Info("account created",
			zap.String("canonical_key", key),
			zap.String("provider", string(identity.Provider)),
		)
		return created, nil
	}
	if !errors.Is(err, ErrDuplicateIdentity) {
		return nil, err
	}

	// Lost the first-login race: the row exists now. Treat as found.
	existing, err = r.repo.FindByCanonicalKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("account: resolve after duplicate insert: %w", err)
	}
	return r.refreshProfile(ctx, existing, identity)
}

func (r *Resolver) refreshProfile(ctx context.Context, acct *Account, identity *auth.Identity) (*Account, error) {
	updated := *acct
	if identity.Email != "" {
		updated.Email = identity.Email
	}
	if identity.DisplayName != "" {
		updated.DisplayName = identity.DisplayName
	}
	if identity.AvatarURL != "" {
		updated.AvatarURL = identity.AvatarURL
	}

	if updated.Email == acct.Email &&
		updated.DisplayName == acct.DisplayName &&
		updated.AvatarURL == acct.AvatarURL {
		return acct, nil
	}

	if err := r.repo.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
