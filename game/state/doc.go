// Package state defines the wire-level game state pushed by the duel server.
//
// The state package contains no logic of its own beyond small read helpers:
// the server is the only authority on the rules, and every GameState the
// client receives is a complete snapshot that fully replaces whatever was
// rendered before. Nothing here is ever merged or patched.
//
// Core Types:
//
// GameState is one authoritative snapshot: the round counter, whose turn it
// is, this client's seat index (absent until the server has seated us), both
// seats, and the shared discard pile. SeatState holds a single seat's hand
// and score.
//
// Usage:
//
//	var snap state.GameState
//	if err := json.Unmarshal(payload, &snap); err != nil {
//		// drop the frame
//	}
//	if snap.MyTurn() {
//		// offer the pass action
//	}
package state
