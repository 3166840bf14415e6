package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OneBiteArticle/oba-backend/internal/auth/token"
	"github.com/OneBiteArticle/oba-backend/internal/revocation"
	"github.com/OneBiteArticle/oba-backend/internal/session"
)

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	codec, err := token.NewCodec(secret)
	require.NoError(t, err)
	return codec
}

// capture records whether a principal reached the inner handler.
type capture struct {
	called    bool
	principal Principal
	hasP      bool
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.principal, c.hasP = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func runRequest(auth *Authenticator, req *http.Request) *capture {
	cap := &capture{}
	rec := httptest.NewRecorder()
	auth.Authenticate(cap.handler()).ServeHTTP(rec, req)
	return cap
}

func TestPublicPathBypassesAuthentication(t *testing.T) {
	t.Parallel()

	auth := NewAuthenticator(newTestCodec(t), revocation.NewMemoryDenylist(),
		TransportBearer, []string{"/health", "/oauth/*"})

	for _, path := range []string{"/health", "/oauth/login/google", "/oauth/callback/kakao"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		cap := runRequest(auth, req)
		assert.True(t, cap.called, "path %s", path)
		assert.False(t, cap.hasP, "path %s", path)
	}
}

func TestNoTokenProceedsUnauthenticated(t *testing.T) {
	t.Parallel()

	auth := NewAuthenticator(newTestCodec(t), revocation.NewMemoryDenylist(),
		TransportBearer, nil)

	cap := runRequest(auth, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.True(t, cap.called)
	assert.False(t, cap.hasP)
}

func TestInvalidTokenProceedsUnauthenticated(t *testing.T) {
	t.Parallel()

	auth := NewAuthenticator(newTestCodec(t), revocation.NewMemoryDenylist(),
		TransportBearer, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	cap := runRequest(auth, req)
	assert.True(t, cap.called, "invalid token must not error the request")
	assert.False(t, cap.hasP)
}

func TestExpiredTokenProceedsUnauthenticated(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	auth := NewAuthenticator(codec, revocation.NewMemoryDenylist(), TransportBearer, nil)

	expired, err := codec.Issue("google:g1", token.KindAccess, "USER", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)

	cap := runRequest(auth, req)
	assert.True(t, cap.called)
	assert.False(t, cap.hasP)
}

func TestRefreshTokenNeverAuthenticates(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	auth := NewAuthenticator(codec, revocation.NewMemoryDenylist(), TransportBearer, nil)

	refresh, err := codec.Issue("google:g1", token.KindRefresh, "", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)

	cap := runRequest(auth, req)
	assert.True(t, cap.called)
	assert.False(t, cap.hasP, "a refresh token must be treated as absent")
}

func TestValidAccessTokenAttachesPrincipal(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	auth := NewAuthenticator(codec, revocation.NewMemoryDenylist(), TransportBearer, nil)

	access, err := codec.Issue("google:g1", token.KindAccess, "USER", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	cap := runRequest(auth, req)
	require.True(t, cap.hasP)
	assert.Equal(t, Principal{Subject: "google:g1", Role: "USER"}, cap.principal)
}

func TestCookieTransport(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	auth := NewAuthenticator(codec, revocation.NewMemoryDenylist(), TransportCookie, nil)

	access, err := codec.Issue("kakao:123", token.KindAccess, "USER", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookieName, Value: access})
	// a bearer header in cookie mode is ignored, not a second chance
	req.Header.Set("Authorization", "Bearer garbage")

	cap := runRequest(auth, req)
	require.True(t, cap.hasP)
	assert.Equal(t, "kakao:123", cap.principal.Subject)
}

func TestDenylistedSubjectStaysUnauthenticated(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	denylist := revocation.NewMemoryDenylist()
	auth := NewAuthenticator(codec, denylist, TransportBearer, nil)

	access, err := codec.Issue("google:g1", token.KindAccess, "USER", time.Hour)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), "google:g1", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	cap := runRequest(auth, req)
	assert.True(t, cap.called)
	assert.False(t, cap.hasP)
}

func TestRunsOncePerRequest(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	auth := NewAuthenticator(codec, revocation.NewMemoryDenylist(), TransportBearer, nil)

	access, err := codec.Issue("google:g1", token.KindAccess, "USER", time.Hour)
	require.NoError(t, err)

	inner := &capture{}
	// outer pass authenticates; the nested pass must not re-process
	// (and must not strip the principal the outer pass attached)
	nested := auth.Authenticate(inner.handler())
	outer := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nested.ServeHTTP(w, r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	outer.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, inner.called)
	assert.True(t, inner.hasP)
	assert.Equal(t, "google:g1", inner.principal.Subject)
}
