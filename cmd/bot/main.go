// Command bot plays one duel seat automatically: it claims a seat, waits
// for snapshots, and on its turn plays the first card in hand or passes
// when the hand is empty. Useful for smoke-testing a server or giving a
// human opponent something to lose against.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/summerquest/duel-client/client"
	"github.com/summerquest/duel-client/game/state"
)

var (
	server  = flag.String("server", "http://localhost:8000", "base URL of the duel server")
	room    = flag.String("room", "", "room to join; empty creates a new one")
	start   = flag.Bool("start", false, "request a start once seated")
	timeout = flag.Duration("timeout", 5*time.Minute, "give up after this long")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Snapshots are handled on the main loop, not in the channel's read
	// goroutine, so actions never race the dispatcher.
	states := make(chan *state.GameState, 8)
	done := make(chan int, 1)

	c, err := client.New(client.Config{
		ServerURL: *server,
		Out:       os.Stdout,
		OnState:   func(snap *state.GameState) { states <- snap },
		OnGameOver: func(winner int) {
			select {
			case done <- winner:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if *room == "" {
		roomID, err := c.CreateRoom(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Room ID: %s (waiting for an opponent)\n", roomID)
	} else {
		if err := c.JoinRoom(ctx, *room); err != nil {
			return err
		}
	}

	if *start {
		// Refusals are fine here; the other seat may start instead.
		if err := c.StartGame(ctx); err != nil {
			log.Printf("start refused: %v", err)
		}
	}

	for {
		select {
		case snap := <-states:
			if err := act(c, snap); err != nil {
				log.Printf("action failed: %v", err)
			}
		case winner := <-done:
			fmt.Println(verdictLine(winner))
			return nil
		case <-ctx.Done():
			return fmt.Errorf("gave up after %s", *timeout)
		}
	}
}

// act takes at most one action for a snapshot: the first card in hand, or
// a pass when the hand is empty. Snapshots where it is not our turn are
// ignored.
func act(c *client.Client, snap *state.GameState) error {
	card, pass := chooseMove(snap)
	switch {
	case card != "":
		return c.PlayCard(card)
	case pass:
		return c.PassTurn()
	default:
		return nil
	}
}

// chooseMove picks the bot's move for one snapshot. It returns the card to
// play, or pass=true for an empty hand on our turn.
func chooseMove(snap *state.GameState) (card string, pass bool) {
	if snap == nil || !snap.MyTurn() {
		return "", false
	}

	hand := snap.Seat(*snap.MyIndex).Hand
	if len(hand) > 0 {
		return hand[0], false
	}
	return "", true
}

func verdictLine(winner int) string {
	if winner == state.WinnerDraw {
		return "Draw."
	}
	return fmt.Sprintf("Player %d won.", winner+1)
}
