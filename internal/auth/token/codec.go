// Package token issues and validates the signed, self-contained tokens
// that carry authentication state between requests. The Codec is the sole
// holder of the signing key.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// ErrWrongKind is returned by callers that found a structurally valid
	// token of the wrong kind (e.g. a refresh token on a normal request).
	ErrWrongKind = errors.New("wrong token kind")
)

// Kind distinguishes access from refresh tokens. It is carried as an
// explicit claim and checked by callers, never inferred.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims are the claims embedded in every issued token.
type Claims struct {
	Kind Kind   `json:"typ"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a single static HMAC-SHA256 key.
// There is no key rotation: rotating the configured secret invalidates
// every token issued before the restart. Safe for concurrent use.
type Codec struct {
	key []byte
}

const minKeyBytes = 32 // 256 bits

// NewCodec decodes the base64 signing secret and fails fast when it is
// absent or below 256 bits of material.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is not configured")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("token: signing secret is not valid base64: %w", err)
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("token: signing secret is %d bytes after decoding, need at least %d", len(key), minKeyBytes)
	}
	return &Codec{key: key}, nil
}

// Issue builds a signed token for subject with iat=now and exp=now+ttl.
// role is embedded only when non-empty (access tokens carry it, refresh
// tokens do not).
func (c *Codec) Issue(subject string, kind Kind, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the claims. A token
// exactly at its expiry instant is expired. Validate does not check the
// kind claim; callers check the kind relevant to their context.
func (c *Codec) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !time.Now().Before(claims.ExpiresAt.Time) {
		// exp == now falls through jwt's leeway handling; treat as expired
		return nil, ErrExpiredToken
	}
	return claims, nil
}
