package models

import "time"

// User represents a registered account on the board.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	PinHash   string    `json:"-"` // Never expose this to the client
	CreatedAt time.Time `json:"createdAt"`
}
