package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/summerquest/duel-client/client"
	"github.com/summerquest/duel-client/game/state"
	"github.com/summerquest/duel-client/gametest"
)

func seat(i int) *int { return &i }

func TestChooseMove(t *testing.T) {
	tests := []struct {
		name string
		snap *state.GameState
		card string
		pass bool
	}{
		{"nil snapshot", nil, "", false},
		{
			"not my turn",
			&state.GameState{CurrentTurn: 1, MyIndex: seat(0), Players: []state.SeatState{{Hand: []string{"atk_01"}}, {}}},
			"", false,
		},
		{
			"no seat",
			&state.GameState{CurrentTurn: 0, Players: []state.SeatState{{Hand: []string{"atk_01"}}, {}}},
			"", false,
		},
		{
			"my turn with cards",
			&state.GameState{CurrentTurn: 0, MyIndex: seat(0), Players: []state.SeatState{{Hand: []string{"atk_01", "def_02"}}, {}}},
			"atk_01", false,
		},
		{
			"my turn with empty hand",
			&state.GameState{CurrentTurn: 1, MyIndex: seat(1), Players: []state.SeatState{{}, {Hand: []string{}}}},
			"", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, pass := chooseMove(tt.snap)
			if card != tt.card || pass != tt.pass {
				t.Errorf("chooseMove = (%q, %v), want (%q, %v)", card, pass, tt.card, tt.pass)
			}
		})
	}
}

func TestVerdictLine(t *testing.T) {
	if got := verdictLine(-1); got != "Draw." {
		t.Errorf("verdictLine(-1) = %q", got)
	}
	if got := verdictLine(0); got != "Player 1 won." {
		t.Errorf("verdictLine(0) = %q", got)
	}
}

func TestActSendsTheMove(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c, err := client.New(client.Config{ServerURL: srv.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	snap := &state.GameState{
		CurrentTurn: 0,
		MyIndex:     seat(0),
		Players:     []state.SeatState{{Hand: []string{"atk_01"}}, {}},
	}
	if err := act(c, snap); err != nil {
		t.Fatalf("act: %v", err)
	}

	if !srv.WaitAction("42", 1, 2*time.Second) {
		t.Fatal("The move never reached the server")
	}
	var sent struct {
		Type string `json:"type"`
		Card string `json:"card"`
	}
	if err := json.Unmarshal(srv.Actions("42")[0], &sent); err != nil {
		t.Fatalf("Failed to decode action: %v", err)
	}
	if sent.Type != "play_card" || sent.Card != "atk_01" {
		t.Errorf("Action = %+v, want play_card atk_01", sent)
	}
}

func TestActPassesOnEmptyHand(t *testing.T) {
	srv := gametest.NewServer()
	defer srv.Close()
	srv.AddRoom("42")

	c, err := client.New(client.Config{ServerURL: srv.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.JoinRoom(context.Background(), "42"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	snap := &state.GameState{
		CurrentTurn: 0,
		MyIndex:     seat(0),
		Players:     []state.SeatState{{}, {}},
	}
	if err := act(c, snap); err != nil {
		t.Fatalf("act: %v", err)
	}

	if !srv.WaitAction("42", 1, 2*time.Second) {
		t.Fatal("The pass never reached the server")
	}
	var sent struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(srv.Actions("42")[0], &sent); err != nil {
		t.Fatalf("Failed to decode action: %v", err)
	}
	if sent.Type != "pass_turn" {
		t.Errorf("Action type = %q, want pass_turn", sent.Type)
	}
}
