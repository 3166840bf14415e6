package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGoogle(t *testing.T) {
	t.Parallel()

	ident, err := Normalize(ProviderGoogle, map[string]any{
		"sub":     "10365716562491128609",
		"email":   "jihun@example.com",
		"name":    "Jihun",
		"picture": "https://lh3.example.com/p.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, ident.Provider)
	assert.Equal(t, "10365716562491128609", ident.ProviderUserID)
	assert.Equal(t, "jihun@example.com", ident.Email)
	assert.Equal(t, "Jihun", ident.DisplayName)
	assert.Equal(t, "https://lh3.example.com/p.jpg", ident.AvatarURL)
	assert.Equal(t, "google:10365716562491128609", ident.CanonicalKey())
}

func TestNormalizeGoogleMissingSub(t *testing.T) {
	t.Parallel()

	_, err := Normalize(ProviderGoogle, map[string]any{"email": "a@x.com"})
	require.Error(t, err)
}

func TestNormalizeKakao(t *testing.T) {
	t.Parallel()

	ident, err := Normalize(ProviderKakao, map[string]any{
		"id": float64(4453787353),
		"kakao_account": map[string]any{
			"email": "kim@example.com",
			"profile": map[string]any{
				"nickname":          "kim",
				"profile_image_url": "https://k.kakaocdn.net/img.jpg",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "4453787353", ident.ProviderUserID)
	assert.Equal(t, "kim@example.com", ident.Email)
	assert.Equal(t, "kim", ident.DisplayName)
	assert.Equal(t, "https://k.kakaocdn.net/img.jpg", ident.AvatarURL)
	assert.Equal(t, "kakao:4453787353", ident.CanonicalKey())
}

func TestNormalizeKakaoConsentWithheld(t *testing.T) {
	t.Parallel()

	// Email scope withheld: only the profile nickname came through.
	ident, err := Normalize(ProviderKakao, map[string]any{
		"id": json.Number("123"),
		"kakao_account": map[string]any{
			"profile": map[string]any{"nickname": "A"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "123", ident.ProviderUserID)
	assert.Empty(t, ident.Email)
	assert.Equal(t, "A", ident.DisplayName)
	assert.Empty(t, ident.AvatarURL)
}

func TestNormalizeKakaoNoAccountObject(t *testing.T) {
	t.Parallel()

	ident, err := Normalize(ProviderKakao, map[string]any{"id": float64(99)})
	require.NoError(t, err)

	assert.Equal(t, "99", ident.ProviderUserID)
	assert.Empty(t, ident.Email)
	assert.Empty(t, ident.DisplayName)
}

func TestNormalizeNaver(t *testing.T) {
	t.Parallel()

	ident, err := Normalize(ProviderNaver, map[string]any{
		"resultcode": "00",
		"response": map[string]any{
			"id":            "abc123",
			"email":         "lee@example.com",
			"name":          "Lee",
			"profile_image": "https://phinf.pstatic.net/p.png",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc123", ident.ProviderUserID)
	assert.Equal(t, "lee@example.com", ident.Email)
	assert.Equal(t, "Lee", ident.DisplayName)
	assert.Equal(t, "naver:abc123", ident.CanonicalKey())
}

func TestNormalizeNaverMissingResponse(t *testing.T) {
	t.Parallel()

	_, err := Normalize(ProviderNaver, map[string]any{"resultcode": "00"})
	require.Error(t, err)
}

func TestNormalizeUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := Normalize(Provider("facebook"), map[string]any{"id": "1"})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestParseProvider(t *testing.T) {
	t.Parallel()

	p, err := ParseProvider("Google")
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, p)

	_, err = ParseProvider("github")
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestLocalCanonicalKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "local:ann@x.com", LocalCanonicalKey(" Ann@X.com "))
}
