package provider

import (
	"fmt"

	"github.com/OneBiteArticle/oba-backend/internal/auth"
)

// Registry holds all configured OAuth providers and allows lookup by
// provider. It performs no auth logic itself.
type Registry struct {
	providers map[auth.Provider]OAuthProvider
}

// NewRegistry registers the given OAuth providers by name.
func NewRegistry(list ...OAuthProvider) *Registry {
	m := make(map[auth.Provider]OAuthProvider)
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider or auth.ErrUnsupportedProvider when it is not
// registered.
func (r *Registry) Get(name auth.Provider) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", auth.ErrUnsupportedProvider, name)
	}
	return p, nil
}
