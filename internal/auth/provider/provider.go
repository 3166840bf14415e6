package provider

import (
	"context"

	"github.com/OneBiteArticle/oba-backend/internal/auth"
)

// OAuthProvider is the contract every external identity provider
// implements. Implementations return the provider's raw user-info
// payload only; normalization and every auth decision happen elsewhere.
type OAuthProvider interface {
	// Name returns the provider identifier used by the registry and by
	// the normalizer.
	Name() auth.Provider

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// Exchange trades the authorization code for provider credentials
	// and returns the raw user-info attributes.
	Exchange(ctx context.Context, code string, codeVerifier string) (map[string]any, error)

	// UserInfo resolves a provider credential obtained out-of-band into
	// the raw user-info attributes. Mobile clients use this path: a
	// verified id token for Google, an access token for Kakao and Naver.
	UserInfo(ctx context.Context, credential string) (map[string]any, error)
}
