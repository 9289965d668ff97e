// Package api is the thin HTTP client for the duel server's room endpoints.
//
// The room endpoints carry no protocol of their own: each call is a single
// request/response whose reply either contains the expected field or counts
// as a failure. All game traffic flows over the websocket channel owned by
// transport/websocket; this package only mints rooms, issues seat
// credentials, kicks off a game, and fetches on-demand snapshots.
//
// Usage:
//
//	c := api.NewClient("http://localhost:8000")
//	roomID, err := c.CreateRoom(ctx)
//	key, err := c.JoinRoom(ctx, roomID)
//	err = c.StartGame(ctx, roomID, key)
package api
