package session

import "time"

// Persistence stores the last issued credentials so a player can rejoin a
// room after restarting the client. The websocket handshake accepts a known
// player key at connect time, so replaying a saved key re-claims the seat.
type Persistence interface {
	// Save persists the credentials for later rejoin.
	Save(rec Record) error

	// Load retrieves the most recently saved credentials.
	Load() (Record, error)

	// Clear removes any saved credentials.
	Clear() error
}

// Record is the JSON structure for persisted credentials.
type Record struct {
	ServerURL string    `json:"server_url"`
	RoomID    string    `json:"room_id"`
	PlayerKey string    `json:"player_key"`
	SavedAt   time.Time `json:"saved_at"`
}
