// Package client binds the room API, the websocket channel, the session,
// and the view into one playable duel client.
//
// The client implements the handler interfaces of transport/websocket, so
// every inbound frame lands here first: room lifecycle frames mutate the
// session (including the credentialed redial the room_joined handshake
// demands), game frames update the session phase and flow on to the view's
// reconciler untouched.
//
// Outbound actions are user-triggered only. The client gates them on its
// own identity preconditions and on channel readiness; it never second-
// guesses the rules, queues, or retries. Whatever the server thinks of an
// action comes back as the next snapshot or an error frame.
//
// Usage:
//
//	c, err := client.New(client.Config{ServerURL: "http://localhost:8000", Out: os.Stdout})
//	roomID, err := c.CreateRoom(ctx)
//	// ... frames drive the session from here on
//	err = c.PlayCard("atk_01")
package client
