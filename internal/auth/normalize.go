package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Normalize flattens a provider-specific user-info payload into the
// canonical Identity. Each provider returns a differently shaped JSON
// document, so extraction is per-provider; the rules here are the only
// place that knows those shapes.
//
// Optional profile fields withheld by consent scopes become empty strings,
// never errors. A missing provider user id is an error: no identity can be
// built without it.
func Normalize(provider Provider, attrs map[string]any) (*Identity, error) {
	switch provider {
	case ProviderGoogle:
		return normalizeGoogle(attrs)
	case ProviderKakao:
		return normalizeKakao(attrs)
	case ProviderNaver:
		return normalizeNaver(attrs)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
}

// Google user-info is flat:
// { "sub": "103...", "email": "...", "name": "...", "picture": "https://..." }
func normalizeGoogle(attrs map[string]any) (*Identity, error) {
	id := stringAttr(attrs, "sub")
	if id == "" {
		return nil, fmt.Errorf("google payload missing sub")
	}
	return &Identity{
		Provider:       ProviderGoogle,
		ProviderUserID: id,
		Email:          stringAttr(attrs, "email"),
		DisplayName:    stringAttr(attrs, "name"),
		AvatarURL:      stringAttr(attrs, "picture"),
	}, nil
}

// Kakao nests everything under kakao_account and returns a numeric id:
// { "id": 4453787353, "kakao_account": { "email": ...,
//   "profile": { "nickname": ..., "profile_image_url": ... } } }
// Every kakao_account field may be absent if the user withheld consent.
func normalizeKakao(attrs map[string]any) (*Identity, error) {
	id := stringifyAttr(attrs, "id")
	if id == "" {
		return nil, fmt.Errorf("kakao payload missing id")
	}

	ident := &Identity{
		Provider:       ProviderKakao,
		ProviderUserID: id,
	}

	acct, _ := attrs["kakao_account"].(map[string]any)
	if acct == nil {
		return ident, nil
	}
	ident.Email = stringAttr(acct, "email")

	if profile, _ := acct["profile"].(map[string]any); profile != nil {
		ident.DisplayName = stringAttr(profile, "nickname")
		ident.AvatarURL = stringAttr(profile, "profile_image_url")
	}
	return ident, nil
}

// Naver wraps the profile in a response object:
// { "response": { "id": ..., "email": ..., "name": ..., "profile_image": ... } }
func normalizeNaver(attrs map[string]any) (*Identity, error) {
	resp, _ := attrs["response"].(map[string]any)
	if resp == nil {
		return nil, fmt.Errorf("naver payload missing response object")
	}
	id := stringAttr(resp, "id")
	if id == "" {
		return nil, fmt.Errorf("naver payload missing response.id")
	}
	return &Identity{
		Provider:       ProviderNaver,
		ProviderUserID: id,
		Email:          stringAttr(resp, "email"),
		DisplayName:    stringAttr(resp, "name"),
		AvatarURL:      stringAttr(resp, "profile_image"),
	}, nil
}

func stringAttr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringifyAttr renders string and numeric attribute values as strings.
// Kakao ids arrive as JSON numbers, which decode to float64 or json.Number
// depending on the decoder.
func stringifyAttr(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
