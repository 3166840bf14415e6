package kakao

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/OneBiteArticle/oba-backend/internal/auth"
	"github.com/OneBiteArticle/oba-backend/internal/auth/provider"
)

const userInfoURL = "https://kapi.kakao.com/v2/user/me"

// Endpoint is Kakao's OAuth 2.0 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

// Provider authenticates against Kakao. Kakao has no OIDC id_token in
// the basic flow; identity comes from the user-info endpoint, reached
// with the access token from the code exchange.
type Provider struct {
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

func New(clientID, clientSecret, redirectURL string) (*Provider, error) {
	if clientID == "" || redirectURL == "" {
		return nil, errors.New("kakao oauth config missing required fields")
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     Endpoint,
			Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *Provider) Name() auth.Provider {
	return auth.ProviderKakao
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
// prompt=login forces re-authentication on shared devices.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("prompt", "login"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) Exchange(
	ctx context.Context,
	code string,
	codeVerifier string,
) (map[string]any, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("kakao token exchange failed: %w", err)
	}

	return p.UserInfo(ctx, token.AccessToken)
}

// UserInfo fetches the raw user attributes with a Kakao access token.
// The numeric id and the nested kakao_account object come back as-is;
// flattening is the normalizer's job.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	return provider.FetchUserInfo(ctx, p.httpClient, userInfoURL, accessToken, "kakao")
}
