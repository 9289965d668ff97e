package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/summerquest/duel-client/game/state"
)

var (
	// ErrNoRoomID means create_room answered without a room id; the
	// client treats that as failure regardless of status code.
	ErrNoRoomID = errors.New("create_room reply carried no room_id")

	// ErrNoPlayerKey means join_room answered without a seat credential.
	ErrNoPlayerKey = errors.New("join_room reply carried no player_key")
)

// StartRefusedError is returned when start_game answers success=false. The
// server's message, when present, is meant for the player.
type StartRefusedError struct {
	Message string
}

func (e *StartRefusedError) Error() string {
	if e.Message == "" {
		return "failed to start game"
	}
	return e.Message
}

// Client calls the duel server's room endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateRoom asks the server for a fresh room and returns its id.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	var reply struct {
		RoomID string `json:"room_id"`
	}
	if err := c.post(ctx, "/api/create_room", nil, &reply); err != nil {
		return "", err
	}
	if reply.RoomID == "" {
		return "", ErrNoRoomID
	}
	return reply.RoomID, nil
}

// JoinRoom claims a seat in roomID and returns the issued player key.
func (c *Client) JoinRoom(ctx context.Context, roomID string) (string, error) {
	var reply struct {
		PlayerKey string `json:"player_key"`
	}
	if err := c.post(ctx, "/api/join_room/"+url.PathEscape(roomID), nil, &reply); err != nil {
		return "", err
	}
	if reply.PlayerKey == "" {
		return "", ErrNoPlayerKey
	}
	return reply.PlayerKey, nil
}

// StartGame asks the server to deal the first round. A success=false reply
// becomes a StartRefusedError carrying the server's message.
func (c *Client) StartGame(ctx context.Context, roomID, playerKey string) error {
	body := struct {
		PlayerKey string `json:"player_key"`
	}{PlayerKey: playerKey}

	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/api/start_game/"+url.PathEscape(roomID), body, &reply); err != nil {
		return err
	}
	if !reply.Success {
		return &StartRefusedError{Message: reply.Message}
	}
	return nil
}

// FetchState fetches an on-demand snapshot outside the push channel. The
// player key is optional; without it the server omits my_index and hands.
func (c *Client) FetchState(ctx context.Context, roomID, playerKey string) (*state.GameState, error) {
	path := "/api/game_state/" + url.PathEscape(roomID)
	if playerKey != "" {
		path += "?player_key=" + url.QueryEscape(playerKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("game_state status %d", resp.StatusCode)
	}

	var snap state.GameState
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to parse game state: %w", err)
	}
	return &snap, nil
}

// post sends a JSON POST and decodes the JSON reply into out. Non-2xx
// replies become errors carrying the server's detail text when present.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		msg := detail.Detail
		if msg == "" {
			msg = detail.Message
		}
		if msg == "" {
			return fmt.Errorf("server answered status %d", resp.StatusCode)
		}
		return fmt.Errorf("server answered status %d: %s", resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse reply: %w", err)
	}
	return nil
}
