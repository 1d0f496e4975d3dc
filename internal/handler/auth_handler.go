package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/lancaster-identity/internal/service"
)

// sessionCookieName is the cookie carrying the session token.
const sessionCookieName = "session"

// AuthHandler handles login, logout, and current-user requests.
type AuthHandler struct {
	sessionService *service.SessionService
	sessionTTL     time.Duration
	logger         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessionService *service.SessionService, sessionTTL time.Duration, logger zerolog.Logger) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{
		sessionService: sessionService,
		sessionTTL:     sessionTTL,
		logger:         logger.With().Str("handler", "auth").Logger(),
	}
}

// loginRequest is the payload for POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRoutes registers authentication routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/dashboard", h.handleDashboard)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	output, err := h.sessionService.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    output.Session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.sessionTTL / time.Second),
	})

	writeJSON(w, http.StatusOK, output.User)
}

// handleLogout terminates the current session. Calling it without a
// session is a no-op and still succeeds.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.sessionService.Logout(r.Context(), cookie.Value); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeMessage(w, http.StatusOK, "Logged out")
}

// handleDashboard returns the account of the current session.
func (h *AuthHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	user, err := h.sessionService.CurrentUser(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// sessionToken extracts the session token from the request cookie.
// Returns the empty string when no cookie is present.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
