package auth

import (
	"net/http"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// CookiePolicy decides how the session cookie is written.
type CookiePolicy struct {
	// Secure marks the cookie Secure and SameSite=None so a frontend on another
	// origin can send it. Without it the cookie is SameSite=Lax for plain-HTTP dev.
	Secure bool
}

// Set writes the session cookie for token, valid for ttl.
func (p CookiePolicy) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}

// Clear overwrites the session cookie with an empty, already expired one.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
