package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/summerquest/duel-client/game/session"
	"github.com/summerquest/duel-client/game/state"
)

// CardView is one rendered card. Playable marks the cards the viewer may
// click/play right now; everything else is inert.
type CardView struct {
	ID       string
	Playable bool
}

// SeatView is one rendered seat: its hand and score line.
type SeatView struct {
	Cards []CardView
	Score int
	Mine  bool
}

// Board is the complete set of render instructions derived from one
// snapshot. It carries no references back into the snapshot's slices.
type Board struct {
	Round    int
	TurnSeat int
	Seats    [state.SeatCount]SeatView
	Discard  []string
	YourTurn bool // offer the single pass action
	Over     bool
	Verdict  string
}

// BuildBoard reconciles a snapshot against the viewer's identity. It is pure:
// same inputs, same board, no side effects.
func BuildBoard(snap *state.GameState, hasKey bool) Board {
	b := Board{
		Round:    snap.Round,
		TurnSeat: snap.CurrentTurn,
		Discard:  append([]string(nil), snap.DiscardPile...),
		YourTurn: hasKey && snap.MyTurn(),
	}

	for i := 0; i < state.SeatCount; i++ {
		seat := snap.Seat(i)
		mine := snap.MyIndex != nil && *snap.MyIndex == i
		// Playable iff identity is known, the turn is ours, and this
		// is our own seat. Computed per seat, never assumed.
		playable := hasKey && snap.MyTurn() && mine

		sv := SeatView{Score: seat.Score, Mine: mine, Cards: make([]CardView, 0, len(seat.Hand))}
		for _, card := range seat.Hand {
			sv.Cards = append(sv.Cards, CardView{ID: card, Playable: playable})
		}
		b.Seats[i] = sv
	}

	return b
}

// Verdict builds the terminal game-over line. -1 is the draw sentinel;
// any other value names a 1-based winner.
func Verdict(winner int) string {
	if winner == state.WinnerDraw {
		return "Game over: draw!"
	}
	return fmt.Sprintf("Game over: player %d wins!", winner+1)
}

// Reconciler owns the rendered board. It reacts to game frames and rewrites
// the whole board each time; it never sends anything to the server.
type Reconciler struct {
	session *session.Session
	banner  *Banner
	out     io.Writer

	mu      sync.Mutex
	visible bool
	board   Board
}

// NewReconciler creates a reconciler rendering to out. out may be nil for
// headless use, in which case only the board model is maintained.
func NewReconciler(sess *session.Session, banner *Banner, out io.Writer) *Reconciler {
	return &Reconciler{session: sess, banner: banner, out: out}
}

// Reveal makes the board visible. Called once the room handshake completes.
func (r *Reconciler) Reveal() {
	r.mu.Lock()
	r.visible = true
	r.mu.Unlock()
}

// Visible reports whether the board has been revealed.
func (r *Reconciler) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// Board returns a copy of the last reconciled board.
func (r *Reconciler) Board() Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}

// HandleGameState replaces the board with one built from the new snapshot.
func (r *Reconciler) HandleGameState(snap *state.GameState) {
	board := BuildBoard(snap, r.session.PlayerKey() != "")

	r.mu.Lock()
	r.board = board
	visible := r.visible
	r.mu.Unlock()

	if visible && r.out != nil {
		r.print(board)
	}
}

// HandleGameStarted surfaces the start as a transient banner. No board
// change; the first snapshot follows separately.
func (r *Reconciler) HandleGameStarted() {
	r.banner.Info("Game started!")
}

// HandleGameOver switches the board into its terminal presentation. There is
// no reset path; a later snapshot simply rebuilds the board.
func (r *Reconciler) HandleGameOver(winner int) {
	verdict := Verdict(winner)

	r.mu.Lock()
	r.board.Over = true
	r.board.Verdict = verdict
	visible := r.visible
	r.mu.Unlock()

	if visible && r.out != nil {
		fmt.Fprintln(r.out, verdict)
	}
}
