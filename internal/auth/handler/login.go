package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OneBiteArticle/oba-backend/internal/auth/credentials"
)

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname" binding:"required,min=2,max=10"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.creds.Register(c.Request.Context(), req.Email, req.Nickname, req.Password)
	switch {
	case errors.Is(err, credentials.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	case errors.Is(err, credentials.ErrWithdrawnEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email has a withdrawal history, use another email"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	acct, err := h.creds.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	pair, err := h.issuer.IssueSession(c.Request.Context(), acct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return
	}

	h.log.Info("password login success",
		zap.String("subject", acct.CanonicalKey),
		zap.String("ip", c.ClientIP()),
	)

	h.respondTokens(c, http.StatusOK, pair)
}
