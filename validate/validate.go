// Command validate checks transcript files recorded with the client's
// --transcript flag. Each line must be one JSON frame, and it checks:
//   - JSON structure and the presence of a type tag
//   - room_joined frames carry both player_key and room_id
//   - game_state frames carry a snapshot with two seats and a turn of 0 or 1
//   - my_index, when present, names one of the two seats
//   - game_over frames carry a winner of -1 (draw), 0, or 1
//   - error frames carry a message
//
// Unknown frame types are reported but do not fail validation, matching
// the client, which ignores them.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// frame mirrors the wire shape of one recorded server frame.
type frame struct {
	Type      string `json:"type"`
	PlayerKey string `json:"player_key"`
	RoomID    string `json:"room_id"`
	Winner    *int   `json:"winner"`
	Message   string `json:"message"`
	State     *struct {
		Round       int   `json:"round"`
		CurrentTurn int   `json:"current_turn"`
		MyIndex     *int  `json:"my_index"`
		Players     []any `json:"players"`
	} `json:"state"`
}

var knownTypes = map[string]bool{
	"room_joined":  true,
	"game_state":   true,
	"game_started": true,
	"game_over":    true,
	"error":        true,
}

// ValidationResult captures the outcome of validating a single file. When
// Valid is true, Errors holds informational summary lines instead.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateTranscript loads and validates one transcript file line by line.
func validateTranscript(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	f, err := os.Open(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}
	defer f.Close()

	frames := 0
	byType := map[string]int{}
	unknown := 0
	sawGameOver := false

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frames++

		var fr frame
		if err := json.Unmarshal(line, &fr); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: invalid JSON: %v", lineNo, err))
			continue
		}

		if fr.Type == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: frame has no type tag", lineNo))
			continue
		}
		byType[fr.Type]++
		if !knownTypes[fr.Type] {
			unknown++
			continue
		}

		for _, msg := range validateFrame(fr) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %s", lineNo, msg))
		}
		if fr.Type == "game_over" {
			sawGameOver = true
		}
	}
	if err := scanner.Err(); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to scan file: %v", err))
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Frames: %d", frames))
		for _, t := range []string{"room_joined", "game_started", "game_state", "game_over", "error"} {
			if byType[t] > 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("✓ %s: %d", t, byType[t]))
			}
		}
		if unknown > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Unknown types (ignored): %d", unknown))
		}
		if sawGameOver {
			result.Errors = append(result.Errors, "✓ Game completed")
		} else {
			result.Errors = append(result.Errors, "✓ Game still in progress at end of transcript")
		}
	}

	return result
}

// validateFrame checks one known frame against its wire contract and
// returns the violations found.
func validateFrame(fr frame) []string {
	var errs []string

	switch fr.Type {
	case "room_joined":
		if fr.PlayerKey == "" {
			errs = append(errs, "room_joined without player_key")
		}
		if fr.RoomID == "" {
			errs = append(errs, "room_joined without room_id")
		}

	case "game_state":
		if fr.State == nil {
			return []string{"game_state without a state payload"}
		}
		if fr.State.Round < 1 {
			errs = append(errs, fmt.Sprintf("round must be at least 1, got %d", fr.State.Round))
		}
		if fr.State.CurrentTurn != 0 && fr.State.CurrentTurn != 1 {
			errs = append(errs, fmt.Sprintf("current_turn must be 0 or 1, got %d", fr.State.CurrentTurn))
		}
		if fr.State.Players != nil && len(fr.State.Players) != 2 {
			errs = append(errs, fmt.Sprintf("snapshot has %d seats, want 2", len(fr.State.Players)))
		}
		if idx := fr.State.MyIndex; idx != nil && *idx != 0 && *idx != 1 {
			errs = append(errs, fmt.Sprintf("my_index must be 0 or 1, got %d", *idx))
		}

	case "game_over":
		if fr.Winner == nil {
			errs = append(errs, "game_over without winner")
		} else if *fr.Winner < -1 || *fr.Winner > 1 {
			errs = append(errs, fmt.Sprintf("winner must be -1, 0, or 1, got %d", *fr.Winner))
		}

	case "error":
		if fr.Message == "" {
			errs = append(errs, "error frame without message")
		}
	}

	return errs
}

// main validates the transcripts named on the command line, or every
// *.jsonl file in the working directory, and exits non-zero if any fail.
func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob("*.jsonl")
		if err != nil || len(files) == 0 {
			fmt.Println("No transcript files found (pass paths or record with --transcript)")
			os.Exit(1)
		}
	}

	allValid := true
	for _, file := range files {
		result := validateTranscript(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All transcripts are valid!")
	} else {
		fmt.Println("❌ Some transcripts have errors")
		os.Exit(1)
	}
}
