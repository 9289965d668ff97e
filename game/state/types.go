package state

// SeatCount is the number of player seats in a duel room.
const SeatCount = 2

// WinnerDraw is the sentinel the server sends in a game_over frame when
// neither seat won.
const WinnerDraw = -1

// SeatState represents one player's seat within a snapshot.
type SeatState struct {
	Hand  []string `json:"hand"`
	Score int      `json:"score"`
}

// GameState is one complete snapshot of the shared game as pushed by the
// server. It is never mutated locally; a newer snapshot supersedes it whole.
type GameState struct {
	Round       int         `json:"round"`
	CurrentTurn int         `json:"current_turn"`
	MyIndex     *int        `json:"my_index,omitempty"` // nil until this client is seated
	Players     []SeatState `json:"players"`
	DiscardPile []string    `json:"discard_pile"`
}

// Seated reports whether the server has assigned this client a seat in the
// snapshot.
func (s *GameState) Seated() bool {
	return s.MyIndex != nil
}

// MyTurn reports whether the snapshot says the acting seat is ours.
func (s *GameState) MyTurn() bool {
	return s.MyIndex != nil && s.CurrentTurn == *s.MyIndex
}

// Seat returns the seat at index i, or a zero-valued seat when the snapshot
// does not carry it. Mirrors the tolerant reads the board does per seat.
func (s *GameState) Seat(i int) SeatState {
	if i < 0 || i >= len(s.Players) {
		return SeatState{}
	}
	return s.Players[i]
}
