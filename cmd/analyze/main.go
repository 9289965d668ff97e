// Command analyze prints quick, human-readable statistics about transcript
// files recorded with the client's --transcript flag. It summarizes frame
// counts by type, round progression, turn balance between the two seats,
// and the final verdict, and flags malformed lines and unknown frame types.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// transcriptFrame is a light struct for reading recorded frames. Only the
// fields the statistics need are decoded.
type transcriptFrame struct {
	Type    string `json:"type"`
	Winner  *int   `json:"winner"`
	Message string `json:"message"`
	State   *struct {
		Round       int      `json:"round"`
		CurrentTurn int      `json:"current_turn"`
		DiscardPile []string `json:"discard_pile"`
	} `json:"state"`
}

// transcriptStats aggregates one transcript file.
type transcriptStats struct {
	Frames    int
	Malformed int
	ByType    map[string]int
	Unknown   map[string]int

	MaxRound   int
	TurnCounts [2]int // snapshots observed per seat on turn
	MaxDiscard int

	Winner *int // from the last game_over frame
	Errors []string
}

var knownTypes = map[string]bool{
	"room_joined":  true,
	"game_state":   true,
	"game_started": true,
	"game_over":    true,
	"error":        true,
}

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{"transcript.jsonl"}
	}

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		analyzeFile(path)
	}
}

func analyzeFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}
	defer f.Close()

	report(analyze(f))
}

// analyze aggregates frames from one JSON-lines stream.
func analyze(r io.Reader) transcriptStats {
	stats := transcriptStats{
		ByType:  make(map[string]int),
		Unknown: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Frames++

		var frame transcriptFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			stats.Malformed++
			continue
		}

		stats.ByType[frame.Type]++
		if !knownTypes[frame.Type] {
			stats.Unknown[frame.Type]++
		}

		switch frame.Type {
		case "game_state":
			if frame.State == nil {
				stats.Malformed++
				continue
			}
			if frame.State.Round > stats.MaxRound {
				stats.MaxRound = frame.State.Round
			}
			if turn := frame.State.CurrentTurn; turn == 0 || turn == 1 {
				stats.TurnCounts[turn]++
			}
			if n := len(frame.State.DiscardPile); n > stats.MaxDiscard {
				stats.MaxDiscard = n
			}
		case "game_over":
			stats.Winner = frame.Winner
		case "error":
			stats.Errors = append(stats.Errors, frame.Message)
		}
	}

	return stats
}

func report(stats transcriptStats) {
	fmt.Printf("Frames: %d\n", stats.Frames)
	if stats.Malformed > 0 {
		fmt.Printf("Malformed: %d\n", stats.Malformed)
	}

	types := make([]string, 0, len(stats.ByType))
	for t := range stats.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-14s %d\n", t, stats.ByType[t])
	}

	if len(stats.Unknown) > 0 {
		fmt.Printf("Unknown frame types (ignored by the client):\n")
		for t, n := range stats.Unknown {
			fmt.Printf("  %q x%d\n", t, n)
		}
	}

	if stats.ByType["game_state"] > 0 {
		fmt.Printf("Rounds reached: %d\n", stats.MaxRound)
		fmt.Printf("Turn balance: player 1 held the turn in %d snapshots, player 2 in %d\n",
			stats.TurnCounts[0], stats.TurnCounts[1])
		fmt.Printf("Largest discard pile: %d\n", stats.MaxDiscard)
	}

	if len(stats.Errors) > 0 {
		fmt.Printf("Server errors (%d):\n", len(stats.Errors))
		for _, msg := range stats.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}

	switch {
	case stats.Winner == nil:
		fmt.Printf("No game_over recorded; the game was still running\n")
	case *stats.Winner == -1:
		fmt.Printf("Result: draw\n")
	default:
		fmt.Printf("Result: player %d won\n", *stats.Winner+1)
	}
}
