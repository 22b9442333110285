package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/isdelr/cronospark/internal/api/handlers"
	"github.com/isdelr/cronospark/internal/auth"
	"github.com/isdelr/cronospark/internal/services"
	"github.com/isdelr/cronospark/internal/web"
)

// NewRouter creates and configures a new Chi router serving the board pages.
func NewRouter(sessions *auth.Sessions, userService services.UserServiceProvider, eventService services.EventServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	renderer := web.NewRenderer()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, sessions, renderer)
	eventHandler := handlers.NewEventHandler(eventService, renderer)

	// Public pages
	r.Get("/register", userHandler.ShowRegister)
	r.Post("/register", userHandler.Register)
	r.Get("/login", userHandler.ShowLogin)
	r.Post("/login", userHandler.Login)
	r.Get("/logout", userHandler.Logout)

	// Board pages, session required
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireLogin)
		r.Get("/", eventHandler.Index)
		r.Get("/add", eventHandler.ShowAdd)
		r.Post("/add", eventHandler.Add)
		r.Post("/delete/{eventID}", eventHandler.Delete)
	})

	return r
}
