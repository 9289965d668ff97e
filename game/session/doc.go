// Package session tracks this client's identity within a duel room.
//
// The session package implements:
//   - The room id and per-seat player key issued by the server
//   - The view-level phase machine driving the UI
//   - Thread-safe access from the read loop, user input, and HTTP paths
//   - Optional persistence of the last credentials for rejoining
//
// Phases:
//
// A session moves through Idle -> Connected (anonymous channel open) ->
// Reconnecting (room_joined received, credentialed redial in flight) ->
// Seated -> Playing/Waiting (driven by snapshots) -> Ended. The reconnect is
// a first-class phase rather than a hidden side effect so callers and tests
// can observe the two-phase handshake.
//
// Concurrency:
//
// The websocket read loop, the terminal input loop, and HTTP calls all
// touch the session, so every field is guarded by a mutex and each mutation
// is a single method call.
//
// Usage:
//
//	sess := session.New()
//	sess.EnterRoom(roomID)
//	if sess.Adopt(playerKey, roomID) {
//		// redial with the key, then:
//		sess.MarkSeated()
//	}
package session
