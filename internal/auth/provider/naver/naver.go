package naver

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

const userInfoURL = "https://openapi.naver.com/v1/nid/me"

// Endpoint is Naver's OAuth 2.0 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
	TokenURL: "https://nid.naver.com/oauth2.0/token",
}

// Provider authenticates against Naver. Identity comes from the profile
// endpoint, which wraps everything in a "response" object.
type Provider struct {
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

func New(clientID, clientSecret, redirectURL string) (*Provider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("naver oauth config missing required fields")
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *Provider) Name() auth.Provider {
	return auth.ProviderNaver
}

// AuthCodeURL builds the authorization URL. auth_type=reprompt forces
// consent re-confirmation, matching the web client's expectations.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("auth_type", "reprompt"),
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
		return nil, fmt.Errorf("naver token exchange failed: %w", err)
	}

	return p.UserInfo(ctx, token.AccessToken)
}

// UserInfo fetches the raw profile with a Naver access token.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	return provider.FetchUserInfo(ctx, p.httpClient, userInfoURL, accessToken, "naver")
}
