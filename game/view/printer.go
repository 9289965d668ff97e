package view

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the board as plain text. Playable cards are bracketed so the
// acting player can see what play <card> accepts.
func Fprint(w io.Writer, b Board) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\nRound %d | turn: player %d\n", b.Round, b.TurnSeat+1)

	for i, seat := range b.Seats {
		label := fmt.Sprintf("Player %d", i+1)
		if seat.Mine {
			label += " (you)"
		}
		fmt.Fprintf(&sb, "%s | score %d | hand(%d): %s\n",
			label, seat.Score, len(seat.Cards), formatHand(seat.Cards))
	}

	fmt.Fprintf(&sb, "Discard(%d): %s\n", len(b.Discard), strings.Join(b.Discard, " "))

	if b.Over {
		fmt.Fprintln(&sb, b.Verdict)
	} else if b.YourTurn {
		fmt.Fprintln(&sb, ">> Your turn: play <card> or pass")
	} else {
		fmt.Fprintln(&sb, "Waiting for opponent...")
	}

	fmt.Fprint(w, sb.String())
}

func (r *Reconciler) print(b Board) {
	Fprint(r.out, b)
}

func formatHand(cards []CardView) string {
	if len(cards) == 0 {
		return "(empty)"
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.Playable {
			parts = append(parts, "["+c.ID+"]")
		} else {
			parts = append(parts, c.ID)
		}
	}
	return strings.Join(parts, " ")
}
