package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedProvider is returned when a login names a provider this
// service has no extraction rules for. There is no fallback identity.
var ErrUnsupportedProvider = errors.New("unsupported oauth provider")

// Provider identifies an external identity provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
	ProviderNaver  Provider = "naver"

	// ProviderLocal marks accounts created through password signup.
	// It never appears in Normalize input.
	ProviderLocal Provider = "local"
)

// ParseProvider maps a path segment or registration id to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(s)) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderKakao:
		return ProviderKakao, nil
	case ProviderNaver:
		return ProviderNaver, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, s)
}

// Identity is the normalized, provider-agnostic shape of a federated user
// profile. It is derived fresh on every login and never persisted as-is.
// It contains facts only, no decisions.
type Identity struct {
	Provider       Provider
	ProviderUserID string // provider-scoped unique user identifier
	Email          string // may be empty if the user withheld consent
	DisplayName    string
	AvatarURL      string
}

// CanonicalKey returns the stable key identifying this federated identity
// across logins: "<provider>:<providerUserId>". For a given real-world
// provider account it never changes, even when email or name change.
func (i Identity) CanonicalKey() string {
	return string(i.Provider) + ":" + i.ProviderUserID
}

// LocalCanonicalKey builds the canonical key for a password account.
func LocalCanonicalKey(email string) string {
	return string(ProviderLocal) + ":" + strings.ToLower(strings.TrimSpace(email))
}
