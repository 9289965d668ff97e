package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/summerquest/duel-client/gametest"
)

func TestCreateAndJoinRoom(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()

	c := NewClient(srv.URL())
	ctx := context.Background()

	roomID, err := c.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if roomID == "" {
		t.Fatal("CreateRoom returned an empty room id")
	}

	key, err := c.JoinRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if key == "" {
		t.Fatal("JoinRoom returned an empty player key")
	}
}

func TestJoinRoomNotFound(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()

	c := NewClient(srv.URL())
	_, err := c.JoinRoom(context.Background(), "nope")
	if err == nil {
		t.Fatal("JoinRoom of an unknown room should fail")
	}
	if !strings.Contains(err.Error(), "Room not found") {
		t.Errorf("JoinRoom error = %q, want the server's detail surfaced", err)
	}
}

func TestCreateRoomMissingField(t *testing.T) {
	// A 200 reply without room_id is a business failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.CreateRoom(context.Background()); !errors.Is(err, ErrNoRoomID) {
		t.Errorf("CreateRoom = %v, want ErrNoRoomID", err)
	}
}

func TestJoinRoomMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "player_count": 1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.JoinRoom(context.Background(), "42"); !errors.Is(err, ErrNoPlayerKey) {
		t.Errorf("JoinRoom = %v, want ErrNoPlayerKey", err)
	}
}

func TestStartGame(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := NewClient(srv.URL())
	if err := c.StartGame(context.Background(), "42", "k1"); err != nil {
		t.Errorf("StartGame = %v, want nil", err)
	}
}

func TestStartGameRefused(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")
	srv.DenyStart("Need two players to start")

	c := NewClient(srv.URL())
	err := c.StartGame(context.Background(), "42", "k1")

	var refused *StartRefusedError
	if !errors.As(err, &refused) {
		t.Fatalf("StartGame = %v, want StartRefusedError", err)
	}
	if refused.Message != "Need two players to start" {
		t.Errorf("Refusal message = %q, want the server's message", refused.Message)
	}
}

func TestStartGameRefusedWithoutMessage(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")
	srv.DenyStart("")

	// DenyStart("") still denies; the error must fall back to generic text.
	c := NewClient(srv.URL())
	err := c.StartGame(context.Background(), "42", "k1")

	var refused *StartRefusedError
	if !errors.As(err, &refused) {
		t.Fatalf("StartGame = %v, want StartRefusedError", err)
	}
	if refused.Error() != "failed to start game" {
		t.Errorf("Refusal text = %q, want the generic fallback", refused.Error())
	}
}

func TestFetchState(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := NewClient(srv.URL())
	snap, err := c.FetchState(context.Background(), "42", "k1")
	if err != nil {
		t.Fatalf("FetchState: %v", err)
	}
	if len(snap.Players) != 2 {
		t.Errorf("Snapshot seats = %d, want 2", len(snap.Players))
	}
}

func TestBaseURLTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8000/")
	if c.BaseURL() != "http://localhost:8000" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", c.BaseURL())
	}
}
