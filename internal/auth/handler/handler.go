package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/account"
	"github.com/OneBiteArticle/oba-backend/internal/auth"
	"github.com/OneBiteArticle/oba-backend/internal/auth/credentials"
	"github.com/OneBiteArticle/oba-backend/internal/auth/provider"
	"github.com/OneBiteArticle/oba-backend/internal/middleware"
	"github.com/OneBiteArticle/oba-backend/internal/session"
)

// Config carries the transport decisions the handlers need: whether
// tokens travel as cookies or response bodies, and where the web OAuth
// flow lands after success.
type Config struct {
	Transport        middleware.TokenTransport
	CookieOpts       session.CookieOptions
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	LoginRedirectURL string
}

type Handler struct {
	providers *provider.Registry
	resolver  *account.Resolver
	issuer    *session.Issuer
	creds     *credentials.Service
	accounts  account.Repository
	cfg       Config
	log       *zap.Logger
}

func NewHandler(
	registry *provider.Registry,
	resolver *account.Resolver,
	issuer *session.Issuer,
	creds *credentials.Service,
	accounts account.Repository,
	cfg Config,
	log *zap.Logger,
) *Handler {
	return &Handler{
		providers: registry,
		resolver:  resolver,
		issuer:    issuer,
		creds:     creds,
		accounts:  accounts,
		cfg:       cfg,
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/auth")
	api.POST("/signup", h.SignUp)
	api.POST("/login", h.Login)
	api.POST("/reissue", h.Reissue)
	api.POST("/logout", h.Logout)
	api.DELETE("/withdraw", h.Withdraw)

	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)

	r.POST("/auth/mobile/:provider", h.MobileLogin)
}

func (h *Handler) oauthLogin(c *gin.Context) {
	name, err := auth.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}
	p, err := h.providers.Get(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	name, err := auth.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}
	p, err := h.providers.Get(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	// provider-side error (user backed out, consent denied): back to login
	if errParam := c.Query("error"); errParam != "" {
		h.log.Warn("oauth callback returned error",
			zap.String("provider", string(name)),
			zap.String("error", errParam),
			zap.String("desc", c.Query("error_description")),
		)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.log.Error("oauth callback missing code and error")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing pkce verifier"})
		return
	}

	attrs, err := p.Exchange(c.Request.Context(), code, codeVerifier)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	pair, acct, ok := h.completeFederatedLogin(c, name, attrs)
	if !ok {
		return
	}

	session.SetCookies(c.Writer, pair, h.cfg.AccessTTL, h.cfg.RefreshTTL, h.cfg.CookieOpts)

	h.log.Info("oauth login success",
		zap.String("subject", acct.CanonicalKey),
		zap.String("ip", c.ClientIP()),
	)

	// web flow: refresh rides the HttpOnly cookie, access is handed to
	// the SPA through the redirect
	redirect := h.cfg.LoginRedirectURL + "?accessToken=" + url.QueryEscape(pair.AccessToken)
	c.Redirect(http.StatusFound, redirect)
}

// completeFederatedLogin runs the shared normalize -> resolve -> issue
// pipeline for web and mobile logins.
func (h *Handler) completeFederatedLogin(
	c *gin.Context,
	name auth.Provider,
	attrs map[string]any,
) (session.TokenPair, *account.Account, bool) {

	identity, err := auth.Normalize(name, attrs)
	if err != nil {
		h.log.Warn("identity normalization failed",
			zap.String("provider", string(name)),
			zap.Error(err),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return session.TokenPair{}, nil, false
	}

	acct, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve account"})
		return session.TokenPair{}, nil, false
	}

	pair, err := h.issuer.IssueSession(c.Request.Context(), acct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return session.TokenPair{}, nil, false
	}
	return pair, acct, true
}

// respondTokens delivers a token pair the way the deployment is
// configured: cookies, or the JSON body.
func (h *Handler) respondTokens(c *gin.Context, status int, pair session.TokenPair) {
	if h.cfg.Transport == middleware.TransportCookie {
		session.SetCookies(c.Writer, pair, h.cfg.AccessTTL, h.cfg.RefreshTTL, h.cfg.CookieOpts)
	}
	c.JSON(status, pair)
}
