package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/account"
	"github.com/OneBiteArticle/oba-backend/internal/middleware"
	"github.com/OneBiteArticle/oba-backend/internal/session"
)

type reissueRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Reissue exchanges a refresh token for a fresh pair. The token arrives
// in the JSON body or, for cookie deployments, the refresh cookie. Every
// rejection looks the same to the caller.
func (h *Handler) Reissue(c *gin.Context) {
	presented := h.presentedRefreshToken(c)
	if presented == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in again"})
		return
	}

	pair, err := h.issuer.Reissue(c.Request.Context(), presented)
	if session.Rejected(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in again"})
		return
	}
	if err != nil {
		h.log.Error("reissue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reissue tokens"})
		return
	}

	h.respondTokens(c, http.StatusOK, pair)
}

// presentedRefreshToken pulls the refresh token from wherever this
// deployment carries it.
func (h *Handler) presentedRefreshToken(c *gin.Context) string {
	var req reissueRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if h.cfg.Transport == middleware.TransportCookie {
		if cookie, err := c.Request.Cookie(session.RefreshCookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

// Logout drops the caller's refresh session. The access token it was
// called with stays valid until expiry.
func (h *Handler) Logout(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	if err := h.issuer.Invalidate(c.Request.Context(), acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}

	if h.cfg.Transport == middleware.TransportCookie {
		session.ClearCookies(c.Writer, h.cfg.CookieOpts)
	}

	h.log.Info("logout", zap.String("subject", acct.CanonicalKey))
	c.Status(http.StatusNoContent)
}

// Withdraw soft-deletes the caller's account and ends the session.
func (h *Handler) Withdraw(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	if err := h.issuer.Withdraw(c.Request.Context(), acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to withdraw"})
		return
	}

	if h.cfg.Transport == middleware.TransportCookie {
		session.ClearCookies(c.Writer, h.cfg.CookieOpts)
	}

	c.Status(http.StatusNoContent)
}

// Me returns the authenticated caller's profile.
func (h *Handler) Me(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          acct.ID,
		"email":       acct.Email,
		"displayName": acct.DisplayName,
		"avatarUrl":   acct.AvatarURL,
		"role":        acct.Role,
	})
}

// currentAccount loads the account behind the request principal. Writes
// the error response itself when there is none.
func (h *Handler) currentAccount(c *gin.Context) (*account.Account, bool) {
	principal, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}

	acct, err := h.accounts.FindByCanonicalKey(c.Request.Context(), principal.Subject)
	if errors.Is(err, account.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return nil, false
	}
	return acct, true
}
