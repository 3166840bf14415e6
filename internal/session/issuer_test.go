package session

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/account"
	"github.com/OneBiteArticle/oba-backend/internal/auth/token"
	"github.com/OneBiteArticle/oba-backend/internal/revocation"
)

func newTestIssuer(t *testing.T) (*Issuer, *account.MemoryRepository, *revocation.MemoryDenylist) {
	t.Helper()

	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	codec, err := token.NewCodec(secret)
	require.NoError(t, err)

	repo := account.NewMemoryRepository()
	denylist := revocation.NewMemoryDenylist()
	issuer := NewIssuer(codec, repo, denylist, 30*time.Minute, 7*24*time.Hour, zap.NewNop())
	return issuer, repo, denylist
}

func seedAccount(t *testing.T, repo *account.MemoryRepository) *account.Account {
	t.Helper()
	acct, err := repo.Create(context.Background(), &account.Account{
		CanonicalKey: "google:g1",
		Email:        "a@x.com",
		DisplayName:  "Ann",
		Role:         account.RoleUser,
	})
	require.NoError(t, err)
	return acct
}

func TestIssueSessionPersistsRefreshToken(t *testing.T) {
	t.Parallel()

	issuer, repo, _ := newTestIssuer(t)
	acct := seedAccount(t, repo)
	ctx := context.Background()

	pair, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.GrantType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := repo.FindByRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, stored.ID)
}

func TestReissueRotates(t *testing.T) {
	t.Parallel()

	issuer, repo, _ := newTestIssuer(t)
	acct := seedAccount(t, repo)
	ctx := context.Background()

	pair, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)

	rotated, err := issuer.Reissue(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The superseded token must no longer reissue.
	_, err = issuer.Reissue(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, Rejected(err))
}

func TestSecondLoginSupersedesFirstRefreshToken(t *testing.T) {
	t.Parallel()

	issuer, repo, _ := newTestIssuer(t)
	acct := seedAccount(t, repo)
	ctx := context.Background()

	first, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)

	// time must advance so the second pair differs from the first
	time.Sleep(1100 * time.Millisecond)

	second, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = issuer.Reissue(ctx, first.RefreshToken)
	require.ErrorIs(t, err, account.ErrNotFound)

	_, err = issuer.Reissue(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestReissueRejectsAccessToken(t *testing.T) {
	t.Parallel()

	issuer, repo, _ := newTestIssuer(t)
	acct := seedAccount(t, repo)
	ctx := context.Background()

	pair, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)

	_, err = issuer.Reissue(ctx, pair.AccessToken)
	require.ErrorIs(t, err, token.ErrWrongKind)
}

func TestReissueRejectsGarbage(t *testing.T) {
	t.Parallel()

	issuer, _, _ := newTestIssuer(t)

	_, err := issuer.Reissue(context.Background(), "not.a.token")
	require.ErrorIs(t, err, token.ErrInvalidToken)
	assert.True(t, Rejected(err))
}

func TestInvalidateBlocksReissue(t *testing.T) {
	t.Parallel()

	issuer, repo, _ := newTestIssuer(t)
	acct := seedAccount(t, repo)
	ctx := context.Background()

	pair, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)

	require.NoError(t, issuer.Invalidate(ctx, acct))

	_, err = issuer.Reissue(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, account.ErrNotFound)

	// Invalidating an already-clear account is a no-op.
	require.NoError(t, issuer.Invalidate(ctx, acct))
}

func TestWithdrawBlocksReissueAndDenylists(t *testing.T) {
	t.Parallel()

	issuer, repo, denylist := newTestIssuer(t)
	acct := seedAccount(t, repo)
	ctx := context.Background()

	pair, err := issuer.IssueSession(ctx, acct)
	require.NoError(t, err)

	require.NoError(t, issuer.Withdraw(ctx, acct))

	_, err = issuer.Reissue(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, account.ErrNotFound)

	revoked, err := denylist.IsRevoked(ctx, acct.CanonicalKey)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAccessTokenCarriesRoleClaim(t *testing.T) {
	t.Parallel()

	issuer, repo, _ := newTestIssuer(t)
	acct := seedAccount(t, repo)

	pair, err := issuer.IssueSession(context.Background(), acct)
	require.NoError(t, err)

	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	codec, err := token.NewCodec(secret)
	require.NoError(t, err)

	claims, err := codec.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "google:g1", claims.Subject)
	assert.Equal(t, token.KindAccess, claims.Kind)
	assert.Equal(t, "USER", claims.Role)
}
