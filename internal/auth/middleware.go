package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/rs/zerolog/log"
)

type contextKey string

// UserKey is the context key for the authenticated user.
const UserKey = contextKey("user")

// UserLookup resolves a token subject to a live account.
type UserLookup interface {
	GetUserByID(ctx context.Context, id models.UserID) (models.User, error)
}

// UserFromContext returns the user stored by the middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// Middleware creates a middleware for protecting routes. It fails closed:
// a missing, malformed or expired token, or one whose user no longer exists,
// all get the same 401.
func Middleware(issuer *TokenIssuer, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				unauthorized(w, "Not authorized, no token")
				return
			}

			claims, err := issuer.Validate(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("Rejected session token")
				unauthorized(w, "Not authorized, token failed")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				log.Warn().Err(err).Str("user_id", claims.UserID.String()).Msg("Token subject could not be resolved")
				unauthorized(w, "Not authorized, token failed")
				return
			}
			user.PasswordHash = ""

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// tokenFromRequest prefers the Authorization header and falls back to the cookie.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
