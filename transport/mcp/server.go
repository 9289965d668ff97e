package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/summerquest/duel-client/client"
	"github.com/summerquest/duel-client/game/session"
	"github.com/summerquest/duel-client/game/view"
)

// seatWait bounds how long create_room waits for the handshake to finish
// before reporting the room without a seat.
const seatWait = 3 * time.Second

// Server exposes one duel seat as MCP tools.
type Server struct {
	client    *client.Client
	mcpServer *server.MCPServer
}

// NewServer wraps a duel client in an MCP tool surface.
func NewServer(c *client.Client) *Server {
	s := &Server{client: c}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Duel Card Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Duel Card Game - MCP Interface

This server drives one seat in a two-player card duel. All rules live on
the game server; these tools only relay actions and report its state.

AVAILABLE TOOLS:
- create_room: mint a room and take the first seat
- join_room: take a seat in an existing room
- start_game: ask the server to deal once both seats are taken
- play_card: play a card from your hand (only on your turn)
- pass_turn: pass the turn
- game_state: fetch and render the current board
- room_info: show room id, seat, and connection status

FLOW:
1. create_room (share the room id) or join_room with a known id
2. start_game once the opponent has joined
3. Alternate play_card/pass_turn with game_state between turns

The server is authoritative. A rejected action comes back as an error;
the next game_state shows the truth.`),
	)

	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new duel room and take the first seat",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleCreateRoom)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "join_room",
		Description: "Take a seat in an existing duel room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID shared by the other player",
				},
			},
			Required: []string{"room_id"},
		},
	}, s.handleJoinRoom)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Ask the server to deal; requires both seats taken",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStartGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "play_card",
		Description: "Play a card from your hand; only valid on your turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"card": map[string]interface{}{
					"type":        "string",
					"description": "Card id exactly as shown in your hand",
				},
			},
			Required: []string{"card"},
		},
	}, s.handlePlayCard)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "pass_turn",
		Description: "Pass the turn to the opponent",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handlePassTurn)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Fetch the current game state and render the board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Show the current room, seat, and connection status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleRoomInfo)
}

// GetMCPServer returns the underlying MCP server for serving.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool handlers

func (s *Server) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID, err := s.client.CreateRoom(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The seat arrives on the channel; give the handshake a moment.
	deadline := time.Now().Add(seatWait)
	for time.Now().Before(deadline) {
		if s.client.Session().Phase() >= session.PhaseSeated {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	result := fmt.Sprintf("Created room: %s\n", roomID)
	if s.client.Session().Phase() >= session.PhaseSeated {
		result += "Seat claimed. Share the room id; start_game once the opponent joins.\n"
	} else {
		result += "Waiting for the server to assign a seat; check room_info.\n"
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	if err := s.client.JoinRoom(ctx, roomID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Joined room %s. Waiting for the game to start.\n", roomID)), nil
}

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.client.StartGame(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Start requested. The game_started notice and first snapshot arrive on the channel.\n"), nil
}

func (s *Server) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	card, _ := args["card"].(string)
	if card == "" {
		return mcp.NewToolResultError("card is required"), nil
	}

	if err := s.client.PlayCard(card); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Played %s. The next snapshot shows the outcome.\n", card)), nil
}

func (s *Server) handlePassTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.client.PassTurn(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Passed the turn.\n"), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.client.FetchState(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hasKey := s.client.Session().PlayerKey() != ""
	return mcp.NewToolResultText(formatBoard(view.BuildBoard(snap, hasKey))), nil
}

func (s *Server) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := s.client.Session()

	roomID := sess.RoomID()
	if roomID == "" {
		roomID = "(none)"
	}
	seat := "no seat yet"
	if sess.PlayerKey() != "" {
		seat = "seat claimed"
	}
	conn := "disconnected"
	if s.client.Connected() {
		conn = "connected"
	}

	result := fmt.Sprintf("Room: %s\nSeat: %s\nChannel: %s\nPhase: %s\n",
		roomID, seat, conn, sess.Phase())
	return mcp.NewToolResultText(result), nil
}

// formatBoard renders a board as plain text for tool output.
func formatBoard(b view.Board) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Round %d | turn: player %d\n", b.Round, b.TurnSeat+1)

	for i, seat := range b.Seats {
		label := fmt.Sprintf("Player %d", i+1)
		if seat.Mine {
			label += " (you)"
		}

		cards := make([]string, len(seat.Cards))
		for j, card := range seat.Cards {
			cards[j] = card.ID
		}
		fmt.Fprintf(&out, "%s | score %d | hand(%d): %s\n",
			label, seat.Score, len(cards), strings.Join(cards, " "))
	}

	fmt.Fprintf(&out, "Discard(%d): %s\n", len(b.Discard), strings.Join(b.Discard, " "))

	switch {
	case b.Over:
		out.WriteString(b.Verdict + "\n")
	case b.YourTurn:
		out.WriteString("Your turn: play_card or pass_turn\n")
	default:
		out.WriteString("Waiting for the opponent.\n")
	}

	return out.String()
}
