package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/account"
	"github.com/OneBiteArticle/oba-backend/internal/auth/credentials"
	"github.com/OneBiteArticle/oba-backend/internal/auth/handler"
	"github.com/OneBiteArticle/oba-backend/internal/auth/provider"
	"github.com/OneBiteArticle/oba-backend/internal/auth/provider/google"
	"github.com/OneBiteArticle/oba-backend/internal/auth/provider/kakao"
	"github.com/OneBiteArticle/oba-backend/internal/auth/provider/naver"
	"github.com/OneBiteArticle/oba-backend/internal/auth/token"
	"github.com/OneBiteArticle/oba-backend/internal/config"
	"github.com/OneBiteArticle/oba-backend/internal/middleware"
	"github.com/OneBiteArticle/oba-backend/internal/revocation"
	"github.com/OneBiteArticle/oba-backend/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config, log *zap.Logger) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	codec, err := token.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}

	denylist := revocation.NewRedisDenylist(infra.Redis.Client)
	accounts := account.NewPostgresRepository(infra.DB)
	resolver := account.NewResolver(accounts, log)
	creds := credentials.NewService(accounts)

	issuer := session.NewIssuer(codec, accounts, denylist, cfg.AccessTTL, cfg.RefreshTTL, log)

	registry, err := buildProviderRegistry(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	transport := middleware.TokenTransport(cfg.TokenTransport)

	authHandler := handler.NewHandler(
		registry,
		resolver,
		issuer,
		creds,
		accounts,
		handler.Config{
			Transport: transport,
			CookieOpts: session.CookieOptions{
				Domain: cfg.CookieDomain,
				Secure: cfg.CookieSecure,
			},
			AccessTTL:        cfg.AccessTTL,
			RefreshTTL:       cfg.RefreshTTL,
			LoginRedirectURL: cfg.LoginRedirectURL,
		},
		log,
	)

	authenticator := middleware.NewAuthenticator(codec, denylist, transport, cfg.PublicPaths)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.GinAuthenticate(authenticator))

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api", middleware.GinRequirePrincipal())

	api.GET("/me", authHandler.Me)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			log.Warn("redis close", zap.Error(err))
		}
		return infra.DB.Close()
	}, nil
}

// buildProviderRegistry registers every fully configured provider. A
// deployment without, say, Naver credentials simply has no Naver login.
func buildProviderRegistry(ctx context.Context, cfg config.Config, log *zap.Logger) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		p, err := google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if cfg.KakaoEnabled() {
		p, err := kakao.New(cfg.KakaoClientID, cfg.KakaoClientSecret, cfg.KakaoRedirectURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if cfg.NaverEnabled() {
		p, err := naver.New(cfg.NaverClientID, cfg.NaverClientSecret, cfg.NaverRedirectURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if len(list) == 0 {
		log.Warn("no oauth providers configured, only password login is available")
	}
	return provider.NewRegistry(list...), nil
}
