package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/cronospark/internal/auth"
	"github.com/isdelr/cronospark/internal/services"
	"github.com/isdelr/cronospark/internal/web"
	"github.com/rs/zerolog/log"
)

// EventHandler handles the board pages: listing, adding and deleting events.
type EventHandler struct {
	service  services.EventServiceProvider
	renderer *web.Renderer
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider, renderer *web.Renderer) *EventHandler {
	return &EventHandler{service: service, renderer: renderer}
}

// Index renders the board: the user's events with urgent-and-near ones first,
// and the urgent sidebar.
func (h *EventHandler) Index(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	board, err := h.service.ListForUser(claims.UserID, time.Now())
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "index.html", web.PageData{
		Title:    "Events",
		Username: claims.Username,
		Flash:    popFlash(w, r),
		Data:     board,
	})
}

// ShowAdd renders the add-event form.
func (h *EventHandler) ShowAdd(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, "add_event.html", web.PageData{
		Title:    "Add event",
		Username: claims.Username,
		Flash:    popFlash(w, r),
	})
}

// Add handles the add-event form submit.
func (h *EventHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	input := services.AddEventInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Link:        r.FormValue("link"),
		Urgent:      r.FormValue("urgent") == "on",
	}

	if _, err := h.service.Add(claims.UserID, input); err != nil {
		if errors.Is(err, services.ErrValidation) {
			setFlash(w, "error", err.Error())
			http.Redirect(w, r, "/add", http.StatusSeeOther)
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to add event")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "success", "Event added")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete handles the delete button submit.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	eventID := chi.URLParam(r, "eventID")

	if err := h.service.Delete(claims.UserID, eventID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			setFlash(w, "error", "Event not found")
		case errors.Is(err, services.ErrForbidden):
			log.Warn().Str("user_id", claims.UserID).Str("event_id", eventID).Msg("Blocked delete of another user's event")
			setFlash(w, "error", "You can only delete your own events")
		default:
			log.Error().Err(err).Str("event_id", eventID).Msg("Failed to delete event")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setFlash(w, "info", "Event deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
