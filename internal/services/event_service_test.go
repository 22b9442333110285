package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

func seedUser(t *testing.T, db *sql.DB, username string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec("INSERT INTO users(id, username, pin_hash) VALUES(?, ?, ?)", id, username, "x")
	require.NoError(t, err)
	return id
}

// insertEvent writes a row directly so tests can control created_at and plant
// dates the add path would reject.
func insertEvent(t *testing.T, db *sql.DB, userID, title string, date, timeStr *string, urgent bool, createdAt time.Time) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(
		`INSERT INTO events (id, user_id, title, description, date, time, link, urgent, created_at)
		 VALUES (?, ?, ?, NULL, ?, ?, NULL, ?, ?)`,
		id, userID, title, date, timeStr, urgent, createdAt)
	require.NoError(t, err)
	return id
}

func str(s string) *string { return &s }

func TestAddValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	tests := []struct {
		name  string
		input AddEventInput
	}{
		{"empty title", AddEventInput{Title: ""}},
		{"blank title", AddEventInput{Title: "   "}},
		{"impossible date", AddEventInput{Title: "x", Date: "2025-13-40"}},
		{"garbage date", AddEventInput{Title: "x", Date: "next tuesday"}},
		{"wrong date format", AddEventInput{Title: "x", Date: "31/12/2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(userID, tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAddStoresEvent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	event, err := svc.Add(userID, AddEventInput{
		Title:       "Doctor",
		Description: "Annual checkup",
		Date:        "2025-03-10",
		Time:        "09:30",
		Link:        "https://example.com",
		Urgent:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, event.Date)
	assert.Equal(t, "2025-03-10", *event.Date)

	parsed, ok := event.ParseDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), parsed)

	// Blank optional fields land as NULL
	minimal, err := svc.Add(userID, AddEventInput{Title: "Bare"})
	require.NoError(t, err)
	var desc, date, tm, link sql.NullString
	var urgent bool
	require.NoError(t, db.QueryRow(
		"SELECT description, date, time, link, urgent FROM events WHERE id = ?", minimal.ID).
		Scan(&desc, &date, &tm, &link, &urgent))
	assert.False(t, desc.Valid)
	assert.False(t, date.Valid)
	assert.False(t, tm.Valid)
	assert.False(t, link.Valid)
	assert.False(t, urgent)
}

func TestAddAcceptsTimestampDates(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	event, err := svc.Add(userID, AddEventInput{Title: "Flight", Date: "2025-03-10T15:04:05Z"})
	require.NoError(t, err)
	require.NotNil(t, event.Date)
	assert.Equal(t, "2025-03-10", *event.Date)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	owner := seedUser(t, db, "ana")
	other := seedUser(t, db, "bob")

	event, err := svc.Add(owner, AddEventInput{Title: "Mine"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(other, event.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(owner, "no-such-id"), ErrNotFound)

	require.NoError(t, svc.Delete(owner, event.ID))
	// Row already gone is a normal outcome, not a crash
	assert.ErrorIs(t, svc.Delete(owner, event.ID), ErrNotFound)

	board, err := svc.ListForUser(owner, testToday)
	require.NoError(t, err)
	assert.Empty(t, board.Events)
}

func TestCleanupPastEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	past := insertEvent(t, db, userID, "Past", str("2025-05-31"), nil, false, testToday)
	today := insertEvent(t, db, userID, "Today", str("2025-06-01"), nil, false, testToday)
	undated := insertEvent(t, db, userID, "Undated", nil, nil, false, testToday)
	unparsable := insertEvent(t, db, userID, "Unparsable", str("someday"), nil, false, testToday)

	deleted, err := svc.CleanupPastEvents(testToday)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	remaining := map[string]bool{}
	rows, err := db.Query("SELECT id FROM events")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		remaining[id] = true
	}
	require.NoError(t, rows.Err())

	assert.False(t, remaining[past])
	assert.True(t, remaining[today])
	assert.True(t, remaining[undated])
	assert.True(t, remaining[unparsable])

	// Idempotent: a second pass has nothing to do
	deleted, err = svc.CleanupPastEvents(testToday)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestListForUserBaseOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	base := testToday
	// Undated sorts first, then dated ascending; same date orders by time with
	// untimed first; full ties fall back to newest created first.
	insertEvent(t, db, userID, "dated-late", str("2025-06-05"), nil, false, base)
	insertEvent(t, db, userID, "undated-old", nil, nil, false, base.Add(-2*time.Hour))
	insertEvent(t, db, userID, "undated-new", nil, nil, false, base.Add(-1*time.Hour))
	insertEvent(t, db, userID, "dated-early-timed", str("2025-06-03"), str("09:00"), false, base)
	insertEvent(t, db, userID, "dated-early-untimed", str("2025-06-03"), nil, false, base)

	board, err := svc.ListForUser(userID, testToday)
	require.NoError(t, err)

	var got []string
	for _, v := range board.Events {
		got = append(got, v.Title)
	}
	assert.Equal(t, []string{
		"undated-new",
		"undated-old",
		"dated-early-untimed",
		"dated-early-timed",
		"dated-late",
	}, got)
}

func TestListForUserPartitionsVeryNearFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	// A and C are urgent and due within the window; B has no date. Base order
	// is B (undated first), then C, then A.
	insertEvent(t, db, userID, "A", str("2025-06-02"), nil, true, testToday)
	insertEvent(t, db, userID, "B", nil, nil, false, testToday)
	insertEvent(t, db, userID, "C", str("2025-06-01"), nil, true, testToday)

	board, err := svc.ListForUser(userID, testToday)
	require.NoError(t, err)
	require.Len(t, board.Events, 3)

	// Very-near events move up, keeping their base-order relative sequence
	assert.Equal(t, "C", board.Events[0].Title)
	assert.Equal(t, "A", board.Events[1].Title)
	assert.Equal(t, "B", board.Events[2].Title)

	assert.True(t, board.Events[0].VeryNear)
	assert.Equal(t, 0, board.Events[0].DaysLeft)
	assert.True(t, board.Events[1].VeryNear)
	assert.Equal(t, 1, board.Events[1].DaysLeft)
	assert.False(t, board.Events[2].VeryNear)
	assert.False(t, board.Events[2].HasDaysLeft)
}

func TestListForUserUrgentSubset(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	// An urgent event outside the three-day window stays in base order but is
	// still eligible for the sidebar.
	insertEvent(t, db, userID, "near", str("2025-06-02"), nil, true, testToday)
	insertEvent(t, db, userID, "far", str("2025-06-20"), nil, true, testToday)
	insertEvent(t, db, userID, "calm", str("2025-06-03"), nil, false, testToday)

	board, err := svc.ListForUser(userID, testToday)
	require.NoError(t, err)

	var urgent []string
	for _, v := range board.UrgentEvents {
		urgent = append(urgent, v.Title)
	}
	// Subset order follows the final list order, not nearness
	assert.Equal(t, []string{"near", "far"}, urgent)
}

func TestListForUserUrgentSubsetCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	userID := seedUser(t, db, "ana")

	for i := 0; i < 7; i++ {
		date := time.Date(2025, 6, 10+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		insertEvent(t, db, userID, date, str(date), nil, true, testToday)
	}

	board, err := svc.ListForUser(userID, testToday)
	require.NoError(t, err)
	assert.Len(t, board.Events, 7)
	assert.Len(t, board.UrgentEvents, 5)
}

func TestListForUserRunsGlobalCleanup(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	ana := seedUser(t, db, "ana")
	bob := seedUser(t, db, "bob")

	insertEvent(t, db, ana, "mine-expired", str("2025-05-20"), nil, false, testToday)
	bobExpired := insertEvent(t, db, bob, "bobs-expired", str("2025-05-20"), nil, false, testToday)

	board, err := svc.ListForUser(ana, testToday)
	require.NoError(t, err)
	assert.Empty(t, board.Events)

	// Cleanup is global, not scoped to the listing user
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events WHERE id = ?", bobExpired).Scan(&n))
	assert.Zero(t, n)
}

func TestListForUserDoesNotLeakOtherUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	ana := seedUser(t, db, "ana")
	bob := seedUser(t, db, "bob")

	insertEvent(t, db, ana, "anas", nil, nil, false, testToday)
	insertEvent(t, db, bob, "bobs", nil, nil, false, testToday)

	board, err := svc.ListForUser(ana, testToday)
	require.NoError(t, err)
	require.Len(t, board.Events, 1)
	assert.Equal(t, "anas", board.Events[0].Title)
}

func TestRegisterAddListScenario(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	events := NewEventService(db)

	user, err := users.Register("ana", "1234")
	require.NoError(t, err)
	_, err = users.Authenticate("ana", "1234")
	require.NoError(t, err)

	_, err = events.Add(user.ID, AddEventInput{Title: "Doctor", Date: "2025-06-01", Urgent: true})
	require.NoError(t, err)

	board, err := events.ListForUser(user.ID, testToday)
	require.NoError(t, err)
	require.Len(t, board.Events, 1)
	require.Len(t, board.UrgentEvents, 1)
	assert.Equal(t, "Doctor", board.UrgentEvents[0].Title)
	assert.Equal(t, "Today", board.Events[0].DaysLabel)
	assert.True(t, board.Events[0].VeryNear)
}
