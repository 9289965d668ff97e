package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/summerquest/duel-client/game/state"
)

// ErrNoChannel is returned when an outbound action is attempted without an
// open channel. Actions are never queued or retried.
var ErrNoChannel = errors.New("no open channel to the server")

// RoomHandler receives room-lifecycle frames.
type RoomHandler interface {
	HandleRoomJoined(playerKey, roomID string)
	HandleServerError(message string)
}

// GameHandler receives game frames, forwarded verbatim.
type GameHandler interface {
	HandleGameState(snap *state.GameState)
	HandleGameStarted()
	HandleGameOver(winner int)
}

// Manager owns at most one live channel to the server at a time. Opening a
// new channel always closes the previous one first, so a redial during the
// room handshake can never leave two channels delivering frames.
type Manager struct {
	host   string
	secure bool
	room   RoomHandler
	game   GameHandler

	statusFn  func(connected bool)
	inboundFn func(payload []byte)
	debug     bool

	dialMu  sync.Mutex // serializes Open/Close
	writeMu sync.Mutex // gorilla allows one concurrent writer

	mu   sync.Mutex
	conn *websocket.Conn
	gen  int // bumped on every swap; stale read loops see a mismatch
}

// NewManager creates a manager dialing the given host. secure selects wss,
// matching a page served over a secure origin.
func NewManager(host string, secure bool, room RoomHandler, game GameHandler) *Manager {
	return &Manager{host: host, secure: secure, room: room, game: game}
}

// SetStatusFunc registers a callback fired when a channel reaches the open
// state or when the current channel drops. Set before the first Open.
func (m *Manager) SetStatusFunc(fn func(connected bool)) {
	m.statusFn = fn
}

// SetInboundFunc registers a tap receiving every raw inbound payload before
// dispatch. Used for transcript recording. Set before the first Open.
func (m *Manager) SetInboundFunc(fn func(payload []byte)) {
	m.inboundFn = fn
}

// SetDebug enables logging of dropped and malformed frames.
func (m *Manager) SetDebug(debug bool) {
	m.debug = debug
}

// ChannelURL computes the channel address for a room, attaching the player
// key as a query credential when one is known.
func (m *Manager) ChannelURL(roomID, playerKey string) string {
	scheme := "ws"
	if m.secure {
		scheme = "wss"
	}

	u := url.URL{Scheme: scheme, Host: m.host, Path: "/ws/" + roomID}
	if playerKey != "" {
		q := u.Query()
		q.Set("player_key", playerKey)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Open connects to a room, anonymously when playerKey is empty. Any live
// channel is closed before the replacement is dialed.
func (m *Manager) Open(ctx context.Context, roomID, playerKey string) error {
	m.dialMu.Lock()
	defer m.dialMu.Unlock()

	m.mu.Lock()
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
		m.gen++
	}
	m.mu.Unlock()

	target := m.ChannelURL(roomID, playerKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to open channel to %s: %w", target, err)
	}

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.conn = conn
	m.mu.Unlock()

	if m.statusFn != nil {
		m.statusFn(true)
	}

	go m.readLoop(conn, gen)
	return nil
}

// Close drops the live channel, if any. This is the only cancellation
// primitive; the read loop winds down on its own once the socket dies.
func (m *Manager) Close() {
	m.dialMu.Lock()
	defer m.dialMu.Unlock()

	m.mu.Lock()
	open := m.conn != nil
	if open {
		m.conn.Close()
		m.conn = nil
		m.gen++
	}
	m.mu.Unlock()

	if open && m.statusFn != nil {
		m.statusFn(false)
	}
}

// IsOpen reports whether a channel is currently live.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// PlayCard sends a play_card action for the given card.
func (m *Manager) PlayCard(playerKey, card string) error {
	return m.Send(Action{Type: ActionPlayCard, PlayerKey: playerKey, Card: card})
}

// PassTurn sends a pass_turn action.
func (m *Manager) PassTurn(playerKey string) error {
	return m.Send(Action{Type: ActionPassTurn, PlayerKey: playerKey})
}

// Send writes an action to the live channel, or fails with ErrNoChannel
// without touching the network.
func (m *Manager) Send(a Action) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return ErrNoChannel
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := conn.WriteJSON(a); err != nil {
		return fmt.Errorf("failed to send %s: %w", a.Type, err)
	}
	return nil
}

// readLoop reads frames from one channel until it dies. Frames read after
// the channel has been superseded are discarded, which is what makes
// ordering across the reconnect boundary a non-issue.
func (m *Manager) readLoop(conn *websocket.Conn, gen int) {
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			current := m.gen == gen
			if current {
				m.conn = nil
			}
			m.mu.Unlock()

			if current {
				if m.debug {
					log.Printf("websocket: channel closed: %v", err)
				}
				if m.statusFn != nil {
					m.statusFn(false)
				}
			}
			return
		}

		if !m.isCurrent(gen) {
			return
		}

		if m.inboundFn != nil {
			m.inboundFn(payload)
		}

		frame, err := DecodeFrame(payload)
		if err != nil {
			// Malformed frames are dropped; the next authoritative
			// snapshot supersedes anything we missed.
			if m.debug {
				log.Printf("websocket: dropping malformed frame: %v", err)
			}
			continue
		}

		m.dispatch(frame)
	}
}

func (m *Manager) isCurrent(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen == gen
}

// dispatch routes one frame by its type tag.
func (m *Manager) dispatch(f Frame) {
	switch f.Type {
	case TypeRoomJoined:
		m.room.HandleRoomJoined(f.PlayerKey, f.RoomID)

	case TypeGameState:
		if f.State == nil {
			if m.debug {
				log.Printf("websocket: game_state frame without state")
			}
			return
		}
		m.game.HandleGameState(f.State)

	case TypeGameStarted:
		m.game.HandleGameStarted()

	case TypeGameOver:
		if f.Winner == nil {
			if m.debug {
				log.Printf("websocket: game_over frame without winner")
			}
			return
		}
		m.game.HandleGameOver(*f.Winner)

	case TypeError:
		m.room.HandleServerError(f.Message)

	default:
		// Unknown frame types are ignored, not errors.
		if m.debug {
			log.Printf("websocket: ignoring unknown frame type %q", f.Type)
		}
	}
}
