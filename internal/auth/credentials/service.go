// Package credentials implements password signup and login for local
// accounts. Local accounts live in the same accounts table as federated
// ones, under the canonical key "local:<email>".
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OneBiteArticle/oba-backend/internal/account"
	"github.com/OneBiteArticle/oba-backend/internal/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("email already in use")

	// ErrWithdrawnEmail rejects signup with an email that belongs to a
	// withdrawn account; the history is kept, the email is burned.
	ErrWithdrawnEmail = errors.New("email has a withdrawal history")
)

type Service struct {
	accounts account.Repository
}

func NewService(accounts account.Repository) *Service {
	return &Service{accounts: accounts}
}

// Register creates a local account for the email. Emails that are in use
// or carry a withdrawal history are rejected, each with its own error.
func (s *Service) Register(
	ctx context.Context,
	email string,
	nickname string,
	password string,
) (*account.Account, error) {

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		if existing.Withdrawn() {
			return nil, ErrWithdrawnEmail
		}
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, account.ErrNotFound) {
		return nil, fmt.Errorf("credentials: lookup email: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	created, err := s.accounts.Create(ctx, &account.Account{
		CanonicalKey: auth.LocalCanonicalKey(email),
		Email:        email,
		DisplayName:  strings.TrimSpace(nickname),
		Role:         account.RoleUser,
		PasswordHash: hash,
	})
	if errors.Is(err, account.ErrDuplicateIdentity) {
		// concurrent signup with the same email
		return nil, ErrAlreadyRegistered
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Authenticate verifies the credential pair and returns the account.
// Whether the email exists is never distinguishable from a wrong
// password.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*account.Account, error) {

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil || acct.Withdrawn() || acct.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(acct.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}
