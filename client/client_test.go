package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/summerquest/duel-client/game/session"
	"github.com/summerquest/duel-client/game/state"
	"github.com/summerquest/duel-client/gametest"
	"github.com/summerquest/duel-client/transport/websocket"
)

// lockedBuffer is a goroutine-safe writer for transcript assertions.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitUntil(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func newTestClient(t *testing.T, srv *gametest.Server, cfg Config) *Client {
	t.Helper()
	cfg.ServerURL = srv.URL()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCreateRoomHandshake(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	roomID, err := c.CreateRoom(context.Background())
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	// The server answers the anonymous connect with room_joined; the
	// client must adopt the key and redial with it.
	waitUntil(t, func() bool { return c.Session().Phase() == session.PhaseSeated }, "seated phase")

	if got := srv.TotalConns(roomID); got != 2 {
		t.Errorf("Channels opened = %d, want 2 (provisional + credentialed)", got)
	}
	if !srv.WaitConns(roomID, 1, 2*time.Second) {
		t.Errorf("Live channels = %d, want exactly 1", srv.OpenConns(roomID))
	}

	keys := srv.ConnKeys(roomID)
	if len(keys) != 1 || keys[0] == "" {
		t.Fatalf("Live channel keys = %v, want one credentialed channel", keys)
	}
	if keys[0] != c.Session().PlayerKey() {
		t.Errorf("Channel key = %q, session key = %q; the redial must present the issued key",
			keys[0], c.Session().PlayerKey())
	}

	// The board is revealed by the handshake, before any game frame.
	if !c.BoardVisible() {
		t.Error("Board not revealed after the handshake")
	}
	if c.Latest() != nil {
		t.Error("No game frame was pushed, yet a snapshot is present")
	}
}

func TestJoinRoomOverHTTP(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})

	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	if c.Session().Phase() != session.PhaseSeated {
		t.Errorf("Phase = %v, want seated", c.Session().Phase())
	}
	if !c.BoardVisible() {
		t.Error("Board not revealed after joining")
	}

	keys := srv.ConnKeys("42")
	if len(keys) != 1 || keys[0] != c.Session().PlayerKey() {
		t.Errorf("Channel keys = %v, want the issued key presented at connect", keys)
	}
}

func TestJoinRoomFailureSurfacesBanner(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	if err := c.JoinRoom(context.Background(), "missing"); err == nil {
		t.Fatal("JoinRoom of an unknown room should fail")
	}

	text, _ := c.Banner().Current()
	if !strings.Contains(text, "Failed to join room") {
		t.Errorf("Banner = %q, want a join failure message", text)
	}
}

func TestStartGameLatch(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")
	srv.DenyStart("Need two players to start")

	c := newTestClient(t, srv, Config{})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	err := c.StartGame(context.Background())
	if err == nil {
		t.Fatal("StartGame should surface the refusal")
	}
	if text, _ := c.Banner().Current(); text != "Need two players to start" {
		t.Errorf("Banner = %q, want the server's refusal message", text)
	}

	// Refusal re-enables the control.
	srv.AllowStart()
	if err := c.StartGame(context.Background()); err != nil {
		t.Fatalf("StartGame after refusal: %v", err)
	}

	// Success keeps it latched; a repeat request is a silent no-op.
	if err := c.StartGame(context.Background()); err != nil {
		t.Errorf("Repeated StartGame = %v, want silent no-op", err)
	}
}

func TestStartGameWithoutIdentity(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	if err := c.StartGame(context.Background()); !errors.Is(err, session.ErrNotInRoom) {
		t.Errorf("StartGame without a room = %v, want ErrNotInRoom", err)
	}
	if text, _ := c.Banner().Current(); text != "Join a room first" {
		t.Errorf("Banner = %q, want the precondition message", text)
	}
}

func TestPlayCardPreconditions(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})

	// No identity at all: refused before any network call.
	if err := c.PlayCard("atk_01"); !errors.Is(err, session.ErrNotInRoom) {
		t.Errorf("PlayCard without identity = %v, want ErrNotInRoom", err)
	}
	if got := len(srv.Actions("42")); got != 0 {
		t.Errorf("Server saw %d actions, want none", got)
	}
}

func TestSendAgainstClosedChannel(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	c.Close()

	if err := c.PassTurn(); !errors.Is(err, websocket.ErrNoChannel) {
		t.Errorf("PassTurn on closed channel = %v, want ErrNoChannel", err)
	}
	if text, _ := c.Banner().Current(); text != "Not connected to the server" {
		t.Errorf("Banner = %q, want the no-channel message", text)
	}
	if got := len(srv.Actions("42")); got != 0 {
		t.Errorf("Server saw %d actions after the refused send, want none", got)
	}
}

func TestSnapshotsDrivePhase(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	srv.Push("42", map[string]interface{}{
		"type": "game_state",
		"state": map[string]interface{}{
			"round": 1, "current_turn": 0, "my_index": 0,
			"players":      []interface{}{map[string]interface{}{"hand": []string{"atk_01"}, "score": 0}, map[string]interface{}{}},
			"discard_pile": []string{},
		},
	})
	waitUntil(t, func() bool { return c.Session().Phase() == session.PhasePlaying }, "playing phase")

	srv.Push("42", map[string]interface{}{
		"type": "game_state",
		"state": map[string]interface{}{
			"round": 1, "current_turn": 1, "my_index": 0,
			"players":      []interface{}{map[string]interface{}{}, map[string]interface{}{}},
			"discard_pile": []string{},
		},
	})
	waitUntil(t, func() bool { return c.Session().Phase() == session.PhaseWaiting }, "waiting phase")

	if c.Latest() == nil || c.Latest().CurrentTurn != 1 {
		t.Errorf("Latest snapshot = %+v, want the second snapshot", c.Latest())
	}
}

func TestGameOver(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	overCh := make(chan int, 1)
	c := newTestClient(t, srv, Config{OnGameOver: func(w int) { overCh <- w }})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	srv.Push("42", map[string]interface{}{"type": "game_over", "winner": 0})

	select {
	case w := <-overCh:
		if w != 0 {
			t.Errorf("Winner = %d, want 0", w)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for game over")
	}

	if c.Session().Phase() != session.PhaseEnded {
		t.Errorf("Phase = %v, want ended", c.Session().Phase())
	}
	board := c.Board()
	if !board.Over || board.Verdict != "Game over: player 1 wins!" {
		t.Errorf("Board = %+v, want the player 1 verdict", board)
	}
}

func TestServerErrorFrameBecomesBanner(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	srv.Push("42", map[string]interface{}{"type": "error", "message": "Not your turn"})

	waitUntil(t, func() bool {
		text, _ := c.Banner().Current()
		return text == "Not your turn"
	}, "the error banner")
}

func TestTranscriptRecording(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	var transcript lockedBuffer
	c := newTestClient(t, srv, Config{Transcript: &transcript})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	srv.Push("42", map[string]interface{}{"type": "game_started"})
	srv.Push("42", map[string]interface{}{
		"type":  "game_state",
		"state": map[string]interface{}{"round": 1, "current_turn": 0},
	})
	waitUntil(t, func() bool { return c.Latest() != nil }, "the recorded snapshot")

	lines := strings.Split(strings.TrimSpace(transcript.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Transcript lines = %d, want 2", len(lines))
	}
	for i, line := range lines {
		var frame map[string]interface{}
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			t.Errorf("Transcript line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestRejoinWithSavedCredentials(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})
	if err := c.Rejoin(context.Background(), "42", "saved-key"); err != nil {
		t.Fatalf("Rejoin: %v", err)
	}

	keys := srv.ConnKeys("42")
	if len(keys) != 1 || keys[0] != "saved-key" {
		t.Errorf("Channel keys = %v, want the saved key presented", keys)
	}
	if c.Session().Phase() != session.PhaseSeated {
		t.Errorf("Phase = %v, want seated", c.Session().Phase())
	}
}

func TestFetchStateRendersSnapshot(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c := newTestClient(t, srv, Config{})
	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	snap, err := c.FetchState(context.Background())
	if err != nil {
		t.Fatalf("FetchState: %v", err)
	}
	if len(snap.Players) != state.SeatCount {
		t.Errorf("Snapshot seats = %d, want %d", len(snap.Players), state.SeatCount)
	}
	if c.Latest() == nil {
		t.Error("FetchState should feed the snapshot through the reconciler")
	}
}
