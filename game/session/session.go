package session

import (
	"errors"
	"sync"

	"github.com/summerquest/duel-client/game/state"
)

var (
	ErrNotInRoom = errors.New("not in a room yet")
	ErrNotSeated = errors.New("no player key issued yet")
)

// Phase is the view-level state of the session. It tracks what the UI should
// offer, not the game rules, which stay server-side.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnected
	PhaseReconnecting
	PhaseSeated
	PhasePlaying
	PhaseWaiting
	PhaseEnded
)

// String returns a short lower-case name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnected:
		return "connected"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseSeated:
		return "seated"
	case PhasePlaying:
		return "playing"
	case PhaseWaiting:
		return "waiting"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session is the single per-client identity record: which room we are in and
// the capability key the server issued for our seat. One instance lives for
// the whole process.
type Session struct {
	mu        sync.RWMutex
	roomID    string
	playerKey string
	phase     Phase
}

// New creates an idle session with no identity.
func New() *Session {
	return &Session{phase: PhaseIdle}
}

// RoomID returns the current room id, empty until a room is created or joined.
func (s *Session) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

// PlayerKey returns the seat credential, empty until the server issues one.
func (s *Session) PlayerKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerKey
}

// Phase returns the current view-level phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// EnterRoom records the room id before the first channel is opened.
func (s *Session) EnterRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
}

// SetKey records a player key obtained out-of-band (the join_room HTTP reply)
// without starting the reconnect handshake.
func (s *Session) SetKey(playerKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerKey = playerKey
}

// MarkConnected notes that a channel reached the open state. Only the first
// anonymous connect moves the phase; later opens belong to the handshake.
func (s *Session) MarkConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseIdle {
		s.phase = PhaseConnected
	}
}

// Adopt takes the identity from a room_joined frame and enters the
// Reconnecting phase. It returns false when the session already holds the
// same seat, in which case a duplicate room_joined is ignored rather than
// tearing down a working credentialed channel.
func (s *Session) Adopt(playerKey, roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playerKey == playerKey && s.roomID == roomID && s.phase >= PhaseSeated {
		return false
	}

	s.playerKey = playerKey
	s.roomID = roomID
	s.phase = PhaseReconnecting
	return true
}

// MarkSeated completes the handshake once the credentialed channel is up.
func (s *Session) MarkSeated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseSeated
}

// ObserveTurn moves between Playing and Waiting based on a snapshot. A
// snapshot also revives an Ended session, which is how a rematch on the same
// channel comes back to life.
func (s *Session) ObserveTurn(snap *state.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase < PhaseSeated {
		return
	}
	if snap.MyTurn() {
		s.phase = PhasePlaying
	} else {
		s.phase = PhaseWaiting
	}
}

// End marks the terminal phase after a game_over frame.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseEnded
}

// Credentials returns the room id and player key needed for an outbound
// action, or an error naming the missing precondition.
func (s *Session) Credentials() (roomID, playerKey string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.roomID == "" {
		return "", "", ErrNotInRoom
	}
	if s.playerKey == "" {
		return "", "", ErrNotSeated
	}
	return s.roomID, s.playerKey, nil
}
