// Package websocket owns the live channel to the duel server.
//
// The websocket package implements:
//   - Channel addressing: ws(s)://host/ws/{roomId}[?player_key={key}]
//   - The at-most-one-live-channel invariant across opens and redials
//   - The inbound read loop and type-tagged frame dispatch
//   - Outbound player actions, refused locally when no channel is open
//
// Two-phase handshake:
//
// The first connect to a room is anonymous or carries a previously saved
// key. When the server answers with a room_joined frame, the caller adopts
// the issued credential and opens a replacement channel that presents it as
// a query parameter; credentials are only read at connect time, never
// renegotiated mid-channel. The manager tags every channel with a
// generation counter, so frames that trickle out of a superseded channel
// after the redial are discarded instead of being dispatched out of order.
//
// Dispatch:
//
// Inbound frames are a union tagged by the "type" field. Room lifecycle
// frames (room_joined, error) go to the RoomHandler, game frames
// (game_state, game_started, game_over) to the GameHandler. Unknown types
// are ignored so newer servers can speak to older clients. Malformed JSON
// is dropped and logged in debug mode; the server's next snapshot makes the
// client whole again.
package websocket
