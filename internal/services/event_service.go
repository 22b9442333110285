package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/cronospark/internal/models"
	"github.com/rs/zerolog/log"
)

// urgentListLimit caps the urgent sidebar, matching the listing page layout.
const urgentListLimit = 5

// EventServiceProvider defines the interface for event board services.
type EventServiceProvider interface {
	ListForUser(userID string, today time.Time) (models.BoardView, error)
	Add(userID string, in AddEventInput) (models.Event, error)
	Delete(userID, eventID string) error
	CleanupPastEvents(today time.Time) (int, error)
}

// AddEventInput carries the add-form fields. Blank optional fields are stored
// as NULL.
type AddEventInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Link        string
	Urgent      bool
}

// EventService provides business logic for the event board.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// ListForUser builds the board view for one user. Expired events are purged
// globally first, then the user's events are ordered by date (undated first),
// time (untimed first) and creation time, events that are urgent and due
// within three days are moved to the front, and the urgent sidebar takes the
// first five urgent events of that final order.
func (s *EventService) ListForUser(userID string, today time.Time) (models.BoardView, error) {
	// Opportunistic, not per-user: any expired event in the store goes.
	if _, err := s.CleanupPastEvents(today); err != nil {
		return models.BoardView{}, err
	}

	rows, err := s.db.Query(
		`SELECT id, user_id, title, description, date, time, link, urgent, created_at
		 FROM events WHERE user_id = ?
		 ORDER BY date ASC, time ASC, created_at DESC`, userID)
	if err != nil {
		return models.BoardView{}, err
	}
	defer rows.Close()

	var veryNear, others []models.EventView
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.Title, &event.Description,
			&event.Date, &event.Time, &event.Link, &event.Urgent, &event.CreatedAt); err != nil {
			return models.BoardView{}, err
		}
		view := models.NewEventView(event, today)
		if view.VeryNear {
			veryNear = append(veryNear, view)
		} else {
			others = append(others, view)
		}
	}
	if err := rows.Err(); err != nil {
		return models.BoardView{}, err
	}

	board := models.BoardView{Events: append(veryNear, others...)}

	// The urgent sidebar reads the final order, so a far-off urgent event can
	// precede a near one when its base position is earlier.
	for _, view := range board.Events {
		if !view.Urgent {
			continue
		}
		board.UrgentEvents = append(board.UrgentEvents, view)
		if len(board.UrgentEvents) == urgentListLimit {
			break
		}
	}

	return board, nil
}

// Add inserts a new event owned by userID. A non-empty date must be ISO
// YYYY-MM-DD, or a full RFC 3339 timestamp from which the date is taken.
func (s *EventService) Add(userID string, in AddEventInput) (models.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Event{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	date, err := normalizeDate(in.Date)
	if err != nil {
		return models.Event{}, err
	}

	event := models.Event{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: nullable(in.Description),
		Date:        date,
		Time:        nullable(in.Time),
		Link:        nullable(in.Link),
		Urgent:      in.Urgent,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT INTO events (id, user_id, title, description, date, time, link, urgent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Title, event.Description, event.Date,
		event.Time, event.Link, event.Urgent, event.CreatedAt)
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// Delete removes an event after checking it exists and belongs to userID. A
// row that vanished under a concurrent delete or cleanup reports ErrNotFound.
func (s *EventService) Delete(userID, eventID string) error {
	var ownerID string
	row := s.db.QueryRow("SELECT user_id FROM events WHERE id = ?", eventID)
	if err := row.Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}

	res, err := s.db.Exec("DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupPastEvents deletes every event, across all users, whose date parses
// and is strictly before today. Undated and unparsable rows are kept; a row
// that fails to parse is logged and skipped. Deleting zero rows is a normal
// outcome, so redundant calls are harmless.
func (s *EventService) CleanupPastEvents(today time.Time) (int, error) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := s.db.Query("SELECT id, date FROM events WHERE date IS NOT NULL")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var expired []string
	for rows.Next() {
		var id, dateStr string
		if err := rows.Scan(&id, &dateStr); err != nil {
			return 0, err
		}
		date, err := time.Parse(models.DateLayout, dateStr)
		if err != nil {
			log.Warn().Str("event_id", id).Str("date", dateStr).Msg("Skipping event with unparsable date during cleanup")
			continue
		}
		if date.Before(today) {
			expired = append(expired, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range expired {
		res, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
		if err != nil {
			return deleted, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			deleted++
		}
	}
	if deleted > 0 {
		log.Info().Int("count", deleted).Msg("Removed past events")
	}
	return deleted, nil
}

// normalizeDate validates and canonicalizes a submitted date. Empty input maps
// to NULL; RFC 3339 timestamps are reduced to their date part.
func normalizeDate(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if _, err := time.Parse(models.DateLayout, raw); err == nil {
		return &raw, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		date := ts.Format(models.DateLayout)
		return &date, nil
	}
	return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
