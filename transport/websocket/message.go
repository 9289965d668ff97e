package websocket

import (
	"encoding/json"

	"github.com/summerquest/duel-client/game/state"
)

// Inbound frame types. Anything else is ignored for forward compatibility.
const (
	TypeRoomJoined  = "room_joined"
	TypeGameState   = "game_state"
	TypeGameStarted = "game_started"
	TypeGameOver    = "game_over"
	TypeError       = "error"
)

// Outbound action types.
const (
	ActionPlayCard = "play_card"
	ActionPassTurn = "pass_turn"
)

// Frame is one inbound message: a union over the known frame kinds, tagged
// by Type. Only the fields belonging to the tagged kind are populated.
type Frame struct {
	Type      string           `json:"type"`
	PlayerKey string           `json:"player_key,omitempty"` // room_joined
	RoomID    string           `json:"room_id,omitempty"`    // room_joined
	State     *state.GameState `json:"state,omitempty"`      // game_state
	Winner    *int             `json:"winner,omitempty"`     // game_over
	Message   string           `json:"message,omitempty"`    // error
}

// Action is one outbound player action. Every action carries the seat
// credential; the server rejects actions it cannot attribute.
type Action struct {
	Type      string `json:"type"`
	PlayerKey string `json:"player_key"`
	Card      string `json:"card,omitempty"` // play_card
}

// DecodeFrame parses a raw inbound payload.
func DecodeFrame(payload []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(payload, &f)
	return f, err
}
