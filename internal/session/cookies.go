package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/careportal/internal/domain"
)

const (
	TokenCookie = "auth-token"
	RoleCookie  = "user-role"
)

type CookieOptions struct {
	TTL    time.Duration
	Secure bool
	Domain string
}

// setSessionCookies writes the cookie pair the edge guard reads. auth-token is HttpOnly;
// user-role stays readable by page scripts.
func setSessionCookies(w http.ResponseWriter, token string, role domain.Role, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   opts.Domain,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(opts.TTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RoleCookie,
		Value:    string(role),
		Path:     "/",
		Domain:   opts.Domain,
		HttpOnly: false,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(opts.TTL.Seconds()),
	})
}

func clearSessionCookies(w http.ResponseWriter, opts CookieOptions) {
	for _, name := range []string{TokenCookie, RoleCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   opts.Domain,
			HttpOnly: name == TokenCookie,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
		})
	}
}

// ReadToken returns the session token from the auth-token cookie, falling back to an
// Authorization: Bearer header for script and API callers.
func ReadToken(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ReadRoleCookie returns the raw user-role cookie value.
func ReadRoleCookie(r *http.Request) domain.Role {
	c, err := r.Cookie(RoleCookie)
	if err != nil {
		return ""
	}
	return domain.ParseRole(c.Value)
}
