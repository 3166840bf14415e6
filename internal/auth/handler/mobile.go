package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/auth"
)

type mobileLoginRequest struct {
	// Google sends its ID token, Kakao and Naver send the access token
	// their native SDK obtained.
	IDToken     string `json:"idToken"`
	AccessToken string `json:"accessToken"`
}

func (r mobileLoginRequest) credential() string {
	if r.IDToken != "" {
		return r.IDToken
	}
	return r.AccessToken
}

// MobileLogin verifies a credential obtained by a native SDK and issues a
// token pair. Mobile clients never go through the browser redirect flow.
func (h *Handler) MobileLogin(c *gin.Context) {
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

	var req mobileLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.credential() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing credential"})
		return
	}

	attrs, err := p.UserInfo(c.Request.Context(), req.credential())
	if err != nil {
		h.log.Warn("mobile credential verification failed",
			zap.String("provider", string(name)),
			zap.Error(err),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	pair, acct, ok := h.completeFederatedLogin(c, name, attrs)
	if !ok {
		return
	}

	h.log.Info("mobile login success",
		zap.String("provider", string(name)),
		zap.String("subject", acct.CanonicalKey),
	)

	c.JSON(http.StatusOK, pair)
}
