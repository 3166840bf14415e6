package session

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieOptions defines how token cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true // tokens must not be script-readable
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookies delivers both tokens to the client, each expiring with its
// own TTL.
func SetCookies(
	w http.ResponseWriter,
	pair TokenPair,
	accessTTL, refreshTTL time.Duration,
	opts CookieOptions,
) {
	opts = opts.normalize()
	now := time.Now()
	setCookie(w, AccessCookieName, pair.AccessToken, now.Add(accessTTL), opts)
	setCookie(w, RefreshCookieName, pair.RefreshToken, now.Add(refreshTTL), opts)
}

// ClearCookies removes both token cookies from the client.
func ClearCookies(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     opts.Path,
			Domain:   opts.Domain,
			MaxAge:   -1,
			HttpOnly: opts.HttpOnly,
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		})
	}
}

func setCookie(w http.ResponseWriter, name, value string, expires time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expires,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
