package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/OneBiteArticle/oba-backend/internal/auth/token"
	"github.com/OneBiteArticle/oba-backend/internal/revocation"
	"github.com/OneBiteArticle/oba-backend/internal/session"
)

// TokenTransport selects where the authenticator looks for the access
// token. One location per deployment, never both.
type TokenTransport string

const (
	TransportBearer TokenTransport = "bearer"
	TransportCookie TokenTransport = "cookie"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	Subject string
	Role    string
}

// unexported, collision-proof context keys
type principalContextKeyType struct{}
type processedContextKeyType struct{}

var (
	principalKey = principalContextKeyType{}
	processedKey = processedContextKeyType{}
)

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authenticator gates every inbound request exactly once. It never fails
// a request itself: anything short of a valid access token degrades to
// "unauthenticated" and the authorization decision happens downstream.
type Authenticator struct {
	codec       *token.Codec
	denylist    revocation.Denylist
	transport   TokenTransport
	publicPaths []string
}

func NewAuthenticator(
	codec *token.Codec,
	denylist revocation.Denylist,
	transport TokenTransport,
	publicPaths []string,
) *Authenticator {
	return &Authenticator{
		codec:       codec,
		denylist:    denylist,
		transport:   transport,
		publicPaths: publicPaths,
	}
}

// Public reports whether the path bypasses authentication entirely.
func (a *Authenticator) Public(path string) bool {
	for _, p := range a.publicPaths {
		if p == path {
			return true
		}
		if strings.HasSuffix(p, "/*") && strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
			return true
		}
	}
	return false
}

// Authenticate wraps next, attaching a Principal to the request context
// when a valid access token is present.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// once per request: internally forwarded sub-requests skip
		if ctx.Value(processedKey) != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx = context.WithValue(ctx, processedKey, struct{}{})

		if a.Public(r.URL.Path) {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		raw := a.extract(r)
		if raw == "" {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		claims, err := a.codec.Validate(raw)
		if err != nil {
			// invalid or expired: proceed unauthenticated
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// a refresh token must never authenticate a normal request
		if claims.Kind != token.KindAccess {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if revoked, err := a.denylist.IsRevoked(ctx, claims.Subject); err == nil && revoked {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx = context.WithValue(ctx, principalKey, Principal{
			Subject: claims.Subject,
			Role:    claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extract pulls the candidate token from the configured transport
// location only.
func (a *Authenticator) extract(r *http.Request) string {
	switch a.transport {
	case TransportCookie:
		cookie, err := r.Cookie(session.AccessCookieName)
		if err != nil {
			return ""
		}
		return cookie.Value
	default:
		header := r.Header.Get("Authorization")
		if header == "" {
			return ""
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
}
