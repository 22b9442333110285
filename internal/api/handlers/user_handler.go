package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/cronospark/internal/auth"
	"github.com/isdelr/cronospark/internal/services"
	"github.com/isdelr/cronospark/internal/web"
	"github.com/rs/zerolog/log"
)

// UserHandler handles registration, login and logout pages.
type UserHandler struct {
	service  services.UserServiceProvider
	sessions *auth.Sessions
	renderer *web.Renderer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, sessions *auth.Sessions, renderer *web.Renderer) *UserHandler {
	return &UserHandler{service: service, sessions: sessions, renderer: renderer}
}

// ShowRegister renders the registration form.
func (h *UserHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "register.html", web.PageData{
		Title: "Register",
		Flash: popFlash(w, r),
	})
}

// Register handles the registration form submit. The PIN itself is never
// logged.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	pin := r.FormValue("pin")

	user, err := h.service.Register(username, pin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrDuplicateUser):
			setFlash(w, "error", err.Error())
			http.Redirect(w, r, "/register", http.StatusSeeOther)
		default:
			log.Error().Err(err).Str("username", username).Msg("Failed to register user")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if err := h.sessions.Set(w, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "success", "Welcome, "+user.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowLogin renders the login form.
func (h *UserHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "login.html", web.PageData{
		Title: "Log in",
		Flash: popFlash(w, r),
	})
}

// Login handles the login form submit.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	pin := r.FormValue("pin")

	user, err := h.service.Authenticate(username, pin)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", username).Msg("Failed login attempt")
			setFlash(w, "error", err.Error())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Login lookup failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Set(w, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session and returns to the login page.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	setFlash(w, "info", "Logged out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
