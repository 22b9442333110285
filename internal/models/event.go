package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format events are stored with.
const DateLayout = "2006-01-02"

// Event represents a reminder owned by a single user. Date, Time and Link are
// free-form strings exactly as submitted; Date is expected to be ISO
// YYYY-MM-DD but may be absent.
type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Time        *string   `json:"time,omitempty"`
	Link        *string   `json:"link,omitempty"`
	Urgent      bool      `json:"urgent"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ParseDate returns the event's calendar date. ok is false when the date is
// absent or does not parse.
func (e Event) ParseDate() (time.Time, bool) {
	if e.Date == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, *e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// EventView pairs an Event with its display state, computed per request and
// never written back to the store.
type EventView struct {
	Event
	HasDaysLeft bool   `json:"-"`
	DaysLeft    int    `json:"daysLeft"`
	DaysLabel   string `json:"daysLabel"`
	VeryNear    bool   `json:"veryNear"`
}

// NewEventView computes the derived fields for an event relative to today.
// Today is truncated to a calendar date before the day arithmetic.
func NewEventView(e Event, today time.Time) EventView {
	v := EventView{Event: e}
	d, ok := e.ParseDate()
	if !ok {
		return v
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	v.HasDaysLeft = true
	v.DaysLeft = int(d.Sub(today).Hours() / 24)
	v.DaysLabel = daysLabel(v.DaysLeft)
	v.VeryNear = e.Urgent && v.DaysLeft >= 0 && v.DaysLeft <= 3
	return v
}

func daysLabel(daysLeft int) string {
	switch {
	case daysLeft < 0:
		return "Overdue"
	case daysLeft == 0:
		return "Today"
	case daysLeft == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %d days", daysLeft)
	}
}

// BoardView is the view model handed to the listing page.
type BoardView struct {
	Events       []EventView `json:"events"`
	UrgentEvents []EventView `json:"urgentEvents"`
}
