// Package session produces and rotates the access/refresh token pairs
// that stand in for server-side sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/account"
	"github.com/OneBiteArticle/oba-backend/internal/auth/token"
	"github.com/OneBiteArticle/oba-backend/internal/revocation"
)

// TokenPair is what every successful login or reissue returns.
type TokenPair struct {
	GrantType    string `json:"grantType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer is the only component that mints refresh tokens. Storing the
// fresh refresh token on the account row supersedes the previous one,
// which keeps one active refresh session per account.
type Issuer struct {
	codec      *token.Codec
	accounts   account.Repository
	denylist   revocation.Denylist
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
}

func NewIssuer(
	codec *token.Codec,
	accounts account.Repository,
	denylist revocation.Denylist,
	accessTTL, refreshTTL time.Duration,
	log *zap.Logger,
) *Issuer {
	return &Issuer{
		codec:      codec,
		accounts:   accounts,
		denylist:   denylist,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// IssueSession mints a fresh pair for the account and persists the new
// refresh token, invalidating whatever refresh token was stored before.
func (s *Issuer) IssueSession(ctx context.Context, acct *account.Account) (TokenPair, error) {
	pair, err := s.mint(acct)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.accounts.SetRefreshToken(ctx, acct.ID, pair.RefreshToken); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Reissue exchanges a refresh token for a fresh pair, rotating the stored
// token. Expiry, tampering, wrong kind, and tokens superseded by logout
// or a prior rotation all fail; the handler collapses them into one
// "please log in again" response so the caller never learns which it was.
func (s *Issuer) Reissue(ctx context.Context, presented string) (TokenPair, error) {
	claims, err := s.codec.Validate(presented)
	if err != nil {
		return TokenPair{}, err
	}
	if claims.Kind != token.KindRefresh {
		return TokenPair{}, token.ErrWrongKind
	}

	// The stored-token lookup is the revocation check: a rotated,
	// logged-out, or withdrawn token no longer matches any account even
	// though its signature is still valid.
	acct, err := s.accounts.FindByRefreshToken(ctx, presented)
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.mint(acct)
	if err != nil {
		return TokenPair{}, err
	}

	// Compare-and-swap on the stored value: of two concurrent reissues
	// presenting the same token, exactly one lands.
	if err := s.accounts.RotateRefreshToken(ctx, acct.ID, presented, pair.RefreshToken); err != nil {
		return TokenPair{}, err
	}

	s.log.Info("session rotated", zap.String("subject", acct.CanonicalKey))
	return pair, nil
}

// Invalidate clears the stored refresh token (logout). Idempotent.
func (s *Issuer) Invalidate(ctx context.Context, acct *account.Account) error {
	return s.accounts.ClearRefreshToken(ctx, acct.ID)
}

// Withdraw soft-deletes the account and blocks its subject for the
// remaining access-token window. Already-issued access tokens are not
// individually revocable; the denylist closes that exposure.
func (s *Issuer) Withdraw(ctx context.Context, acct *account.Account) error {
	if err := s.accounts.Withdraw(ctx, acct.ID); err != nil {
		return err
	}
	if err := s.denylist.Revoke(ctx, acct.CanonicalKey, s.accessTTL); err != nil {
		// the account is already gone for login purposes; log and move on
		s.log.Warn("denylist revoke failed",
			zap.String("subject", acct.CanonicalKey),
			zap.Error(err),
		)
	}
	s.log.Info("account withdrawn", zap.String("subject", acct.CanonicalKey))
	return nil
}

func (s *Issuer) mint(acct *account.Account) (TokenPair, error) {
	access, err := s.codec.Issue(acct.CanonicalKey, token.KindAccess, string(acct.Role), s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("session: issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(acct.CanonicalKey, token.KindRefresh, "", s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("session: issue refresh token: %w", err)
	}
	return TokenPair{
		GrantType:    "Bearer",
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Rejected reports whether err is one of the expected reissue failures
// (as opposed to an infrastructure error).
func Rejected(err error) bool {
	return errors.Is(err, token.ErrInvalidToken) ||
		errors.Is(err, token.ErrExpiredToken) ||
		errors.Is(err, token.ErrWrongKind) ||
		errors.Is(err, account.ErrNotFound)
}
