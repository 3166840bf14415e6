// Package config loads the service configuration from the environment
// and fails fast on anything a running service cannot do without.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	// JWTSecret is the base64-encoded HMAC signing key. Rotating it
	// invalidates every outstanding token.
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// TokenTransport picks the single place the authenticator reads the
	// access token from: "bearer" or "cookie".
	TokenTransport string   `env:"TOKEN_TRANSPORT" envDefault:"bearer"`
	PublicPaths    []string `env:"PUBLIC_PATHS" envSeparator:"," envDefault:"/health,/api/auth/signup,/api/auth/login,/api/auth/reissue,/oauth/*,/auth/mobile/*"`

	// LoginRedirectURL is where the browser lands after a successful web
	// OAuth flow, with the access token appended as a query parameter.
	LoginRedirectURL string `env:"LOGIN_REDIRECT_URL" envDefault:"/"`

	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"true"`

	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	KakaoClientID     string `env:"KAKAO_CLIENT_ID"`
	KakaoClientSecret string `env:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURL  string `env:"KAKAO_REDIRECT_URL"`

	NaverClientID     string `env:"NAVER_CLIENT_ID"`
	NaverClientSecret string `env:"NAVER_CLIENT_SECRET"`
	NaverRedirectURL  string `env:"NAVER_REDIRECT_URL"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TokenTransport != "bearer" && c.TokenTransport != "cookie" {
		return fmt.Errorf("config: TOKEN_TRANSPORT must be bearer or cookie, got %q", c.TokenTransport)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("config: token TTLs must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return fmt.Errorf("config: REFRESH_TOKEN_TTL must exceed ACCESS_TOKEN_TTL")
	}
	return nil
}

// GoogleEnabled reports whether the Google provider is fully configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// KakaoEnabled reports whether the Kakao provider is fully configured.
// Kakao issues confidential clients without a secret, so only the id and
// redirect are mandatory.
func (c Config) KakaoEnabled() bool {
	return c.KakaoClientID != "" && c.KakaoRedirectURL != ""
}

// NaverEnabled reports whether the Naver provider is fully configured.
func (c Config) NaverEnabled() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != "" && c.NaverRedirectURL != ""
}
