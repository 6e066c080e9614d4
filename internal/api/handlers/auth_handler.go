package handlers

import (
	"net/http"

	"github.com/isdelr/aurora-be/internal/auth"
	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and the session endpoints.
type AuthHandler struct {
	service services.UserServiceProvider
	issuer  *auth.TokenIssuer
	cookies auth.CookiePolicy
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, issuer *auth.TokenIssuer, cookies auth.CookiePolicy) *AuthHandler {
	return &AuthHandler{service: service, issuer: issuer, cookies: cookies}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the public user plus the raw token.
type sessionResponse struct {
	models.Profile
	Token string `json:"token"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, r, err)
		return
	}

	h.startSession(w, r, user, http.StatusCreated)
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, r, err)
		return
	}

	h.startSession(w, r, user, http.StatusOK)
}

// Profile returns the currently authenticated user.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

// Logout expires the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user models.User, status int) {
	token, err := h.issuer.Generate(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to generate JWT")
		writeError(w, r, err)
		return
	}

	h.cookies.Set(w, token, h.issuer.TTL())
	writeJSON(w, status, sessionResponse{Profile: user.Profile(), Token: token})
}
