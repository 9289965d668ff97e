package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"sync"

	"github.com/summerquest/duel-client/api"
	"github.com/summerquest/duel-client/game/session"
	"github.com/summerquest/duel-client/game/state"
	"github.com/summerquest/duel-client/game/view"
	"github.com/summerquest/duel-client/transport/websocket"
)

// Config configures a duel client.
type Config struct {
	// ServerURL is the duel server's base http(s) URL. An https origin
	// upgrades the channel scheme to wss.
	ServerURL string

	// Out receives rendered boards and banners. nil runs headless.
	Out io.Writer

	// Transcript, when set, receives every inbound frame as one JSON
	// line. Useful with the validate and analyze tools.
	Transcript io.Writer

	// Persist, when set, stores credentials on every successful seat so
	// a later Rejoin can re-claim it.
	Persist session.Persistence

	Debug bool

	// OnState and OnGameOver are optional hooks for programmatic players.
	OnState    func(snap *state.GameState)
	OnGameOver func(winner int)
}

// Client is one seat's view of a duel room.
type Client struct {
	api     *api.Client
	session *session.Session
	banner  *view.Banner
	view    *view.Reconciler
	conn    *websocket.Manager
	persist session.Persistence
	debug   bool

	onState    func(*state.GameState)
	onGameOver func(int)

	mu           sync.Mutex
	latest       *state.GameState
	startPending bool

	transcriptMu sync.Mutex
	transcript   io.Writer
}

// New creates a client for the server at cfg.ServerURL.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.ServerURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL %q has no host", cfg.ServerURL)
	}

	sess := session.New()
	banner := view.NewBanner(cfg.Out)

	c := &Client{
		api:        api.NewClient(cfg.ServerURL),
		session:    sess,
		banner:     banner,
		view:       view.NewReconciler(sess, banner, cfg.Out),
		persist:    cfg.Persist,
		debug:      cfg.Debug,
		onState:    cfg.OnState,
		onGameOver: cfg.OnGameOver,
		transcript: cfg.Transcript,
	}

	c.conn = websocket.NewManager(u.Host, u.Scheme == "https", c, c)
	c.conn.SetDebug(cfg.Debug)
	c.conn.SetStatusFunc(c.handleStatus)
	if cfg.Transcript != nil {
		c.conn.SetInboundFunc(c.record)
	}

	return c, nil
}

// Session exposes the identity record, mainly for status displays.
func (c *Client) Session() *session.Session { return c.session }

// Banner exposes the transient message display.
func (c *Client) Banner() *view.Banner { return c.banner }

// Board returns a copy of the last reconciled board.
func (c *Client) Board() view.Board { return c.view.Board() }

// BoardVisible reports whether the room handshake has revealed the board.
func (c *Client) BoardVisible() bool { return c.view.Visible() }

// Latest returns the most recent snapshot, nil before the first one.
func (c *Client) Latest() *state.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Connected reports whether a channel is live.
func (c *Client) Connected() bool { return c.conn.IsOpen() }

// Close drops the channel. The session keeps its identity so the caller can
// decide whether to rejoin.
func (c *Client) Close() { c.conn.Close() }

// CreateRoom mints a room and opens the provisional anonymous channel. The
// server answers the connect with room_joined, which drives the rest of the
// handshake.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	roomID, err := c.api.CreateRoom(ctx)
	if err != nil {
		c.banner.Error("Failed to create room: %v", err)
		return "", err
	}

	c.session.EnterRoom(roomID)
	c.banner.Info("Room %s created, connecting...", roomID)

	if err := c.conn.Open(ctx, roomID, ""); err != nil {
		c.banner.Error("Failed to connect: %v", err)
		return roomID, err
	}
	return roomID, nil
}

// JoinRoom claims a seat over HTTP and opens the credentialed channel.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	key, err := c.api.JoinRoom(ctx, roomID)
	if err != nil {
		c.banner.Error("Failed to join room: %v", err)
		return err
	}
	return c.seat(ctx, roomID, key)
}

// Rejoin re-claims a previously issued seat, e.g. after a client restart.
func (c *Client) Rejoin(ctx context.Context, roomID, playerKey string) error {
	return c.seat(ctx, roomID, playerKey)
}

func (c *Client) seat(ctx context.Context, roomID, playerKey string) error {
	c.session.EnterRoom(roomID)
	c.session.SetKey(playerKey)

	if err := c.conn.Open(ctx, roomID, playerKey); err != nil {
		c.banner.Error("Failed to connect: %v", err)
		return err
	}

	c.session.MarkSeated()
	c.view.Reveal()
	c.banner.Success("Joined room %s", roomID)
	c.saveCredentials()
	return nil
}

// StartGame asks the server to deal. The control stays latched while a
// request is in flight or has succeeded, and is released on refusal so the
// player can try again.
func (c *Client) StartGame(ctx context.Context) error {
	roomID, key, err := c.session.Credentials()
	if err != nil {
		c.banner.Error("Join a room first")
		return err
	}

	c.mu.Lock()
	if c.startPending {
		c.mu.Unlock()
		return nil
	}
	c.startPending = true
	c.mu.Unlock()

	if err := c.api.StartGame(ctx, roomID, key); err != nil {
		c.mu.Lock()
		c.startPending = false
		c.mu.Unlock()

		var refused *api.StartRefusedError
		if errors.As(err, &refused) {
			c.banner.Error("%s", refused.Error())
		} else {
			c.banner.Error("Failed to start game: %v", err)
		}
		return err
	}
	return nil
}

// PlayCard sends a play_card action for the given card id.
func (c *Client) PlayCard(card string) error {
	_, key, err := c.session.Credentials()
	if err != nil {
		c.banner.Error("Join a room first")
		return err
	}

	if err := c.conn.PlayCard(key, card); err != nil {
		c.sendFailed(err)
		return err
	}
	return nil
}

// PassTurn sends a pass_turn action.
func (c *Client) PassTurn() error {
	_, key, err := c.session.Credentials()
	if err != nil {
		c.banner.Error("Join a room first")
		return err
	}

	if err := c.conn.PassTurn(key); err != nil {
		c.sendFailed(err)
		return err
	}
	return nil
}

func (c *Client) sendFailed(err error) {
	if errors.Is(err, websocket.ErrNoChannel) {
		c.banner.Error("Not connected to the server")
		return
	}
	c.banner.Error("Send failed: %v", err)
}

// FetchState pulls an on-demand snapshot over HTTP and renders it like a
// pushed one.
func (c *Client) FetchState(ctx context.Context) (*state.GameState, error) {
	roomID := c.session.RoomID()
	if roomID == "" {
		c.banner.Error("Join a room first")
		return nil, session.ErrNotInRoom
	}

	snap, err := c.api.FetchState(ctx, roomID, c.session.PlayerKey())
	if err != nil {
		c.banner.Error("Failed to fetch game state: %v", err)
		return nil, err
	}

	c.HandleGameState(snap)
	return snap, nil
}

// HandleRoomJoined runs the second phase of the handshake: adopt the issued
// identity, then redial with the credential, since keys are only presented
// at connect time.
func (c *Client) HandleRoomJoined(playerKey, roomID string) {
	if !c.session.Adopt(playerKey, roomID) {
		// Same seat announced again; the channel we hold is already
		// credentialed.
		return
	}

	c.banner.Success("Joined room %s", roomID)

	if err := c.conn.Open(context.Background(), roomID, playerKey); err != nil {
		c.banner.Error("Failed to reconnect with credentials: %v", err)
		return
	}

	c.session.MarkSeated()
	c.view.Reveal()
	c.saveCredentials()
}

// HandleServerError surfaces a server-pushed error verbatim. No local state
// is rolled back; the next snapshot is the correction.
func (c *Client) HandleServerError(message string) {
	c.banner.Error("%s", message)
}

// HandleGameState forwards a snapshot to the reconciler.
func (c *Client) HandleGameState(snap *state.GameState) {
	c.mu.Lock()
	c.latest = snap
	c.mu.Unlock()

	c.session.ObserveTurn(snap)
	c.view.HandleGameState(snap)

	if c.onState != nil {
		c.onState(snap)
	}
}

// HandleGameStarted forwards the start notice to the reconciler.
func (c *Client) HandleGameStarted() {
	c.view.HandleGameStarted()
}

// HandleGameOver forwards the terminal result to the reconciler.
func (c *Client) HandleGameOver(winner int) {
	c.session.End()
	c.view.HandleGameOver(winner)

	if c.onGameOver != nil {
		c.onGameOver(winner)
	}
}

func (c *Client) handleStatus(connected bool) {
	if connected {
		c.session.MarkConnected()
		if c.debug {
			log.Printf("client: channel open")
		}
		return
	}
	if c.debug {
		log.Printf("client: channel closed")
	}
	c.banner.Error("Disconnected from server")
}

func (c *Client) saveCredentials() {
	if c.persist == nil {
		return
	}
	roomID, key, err := c.session.Credentials()
	if err != nil {
		return
	}
	rec := session.Record{
		ServerURL: c.api.BaseURL(),
		RoomID:    roomID,
		PlayerKey: key,
	}
	if err := c.persist.Save(rec); err != nil {
		log.Printf("client: failed to save session: %v", err)
	}
}

func (c *Client) record(payload []byte) {
	c.transcriptMu.Lock()
	defer c.transcriptMu.Unlock()
	if c.transcript == nil {
		return
	}
	c.transcript.Write(payload)
	io.WriteString(c.transcript, "\n")
}
