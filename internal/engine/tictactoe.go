// internal/engine/tictactoe.go
package engine

import (
	"math/rand/v2"
	"time"
)

// Mark is one cell of a tic-tac-toe board.
type Mark string

const (
	MarkNone Mark = ""
	MarkX    Mark = "X" // Seat1
	MarkO    Mark = "O" // Seat2
)

// winLines are the 8 canonical lines: 3 rows, 3 columns, 2 diagonals.
// Scan order is fixed; a board can hold at most one winning mark, so the
// first matched line is the only possible one.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToe is the 9-cell rule engine. Seat1 plays X and moves first.
type TicTacToe struct {
	board         [9]Mark
	currentTurn   Seat
	phase         Phase
	winner        string // "X", "O" or "draw"; empty while playing
	winningLine   []int
	turnStartedAt time.Time
	rng           *rand.Rand
}

// NewTicTacToe creates a fresh board with Seat1 to move.
func NewTicTacToe(now time.Time, seed uint64) *TicTacToe {
	return &TicTacToe{
		currentTurn:   Seat1,
		phase:         PhasePlaying,
		turnStartedAt: now,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func seatMark(s Seat) Mark {
	if s == Seat1 {
		return MarkX
	}
	return MarkO
}

// ApplyMove writes the acting seat's mark into cell input. Cells are never
// overwritten; a terminal move flips phase to complete, otherwise the turn
// and turn clock advance.
func (g *TicTacToe) ApplyMove(seat Seat, input int, now time.Time) MoveResult {
	if g.phase == PhaseComplete {
		return Failure(ErrGameOver)
	}
	if seat != g.currentTurn {
		return Failure(ErrNotYourTurn)
	}
	if input < 0 || input > 8 {
		return Failure(ErrInvalidCell)
	}
	if g.board[input] != MarkNone {
		return Failure(ErrCellTaken)
	}

	mark := seatMark(seat)
	g.board[input] = mark

	if line, won := g.findWin(mark); won {
		g.phase = PhaseComplete
		g.winner = string(mark)
		g.winningLine = line
		return MoveResult{Success: true, GameComplete: true}
	}
	if g.boardFull() {
		g.phase = PhaseComplete
		g.winner = "draw"
		return MoveResult{Success: true, GameComplete: true, IsDraw: true}
	}

	g.currentTurn = g.currentTurn.Other()
	g.turnStartedAt = now
	return MoveResult{Success: true}
}

// findWin scans the canonical lines for three of mark.
func (g *TicTacToe) findWin(mark Mark) ([]int, bool) {
	for _, line := range winLines {
		if g.board[line[0]] == mark && g.board[line[1]] == mark && g.board[line[2]] == mark {
			return []int{line[0], line[1], line[2]}, true
		}
	}
	return nil, false
}

func (g *TicTacToe) boardFull() bool {
	for _, c := range g.board {
		if c == MarkNone {
			return false
		}
	}
	return true
}

// ForcedMoves picks uniformly at random among empty cells for the seat on
// turn. No empty cell means the prior move already ended the game.
func (g *TicTacToe) ForcedMoves() []ForcedMove {
	if g.phase != PhasePlaying {
		return nil
	}
	var empty []int
	for i, c := range g.board {
		if c == MarkNone {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return nil
	}
	pick := empty[g.rng.IntN(len(empty))]
	return []ForcedMove{{Seat: g.currentTurn, Input: pick}}
}

// TurnStartedAt reports when the current turn clock started.
func (g *TicTacToe) TurnStartedAt() time.Time { return g.turnStartedAt }

// Outcome reports the terminal result, if any.
func (g *TicTacToe) Outcome() Outcome {
	if g.phase != PhaseComplete {
		return Outcome{}
	}
	if g.winner == "draw" {
		return Outcome{Done: true, Draw: true}
	}
	winner := Seat1
	if g.winner == string(MarkO) {
		winner = Seat2
	}
	return Outcome{Done: true, Winner: winner}
}

// TicTacToeView is the projection of a tic-tac-toe board. The board holds no
// concealed information, so every viewer sees the same thing.
type TicTacToeView struct {
	Board       [9]string `json:"board"`
	CurrentTurn string    `json:"currentTurn"`
	Phase       Phase     `json:"phase"`
	Winner      string    `json:"winner,omitempty"`
	WinningLine []int     `json:"winningLine,omitempty"`
}

// Project renders the board. Viewer is ignored: nothing is hidden.
func (g *TicTacToe) Project(_ Viewer) interface{} {
	v := TicTacToeView{
		CurrentTurn: g.currentTurn.Label(),
		Phase:       g.phase,
		Winner:      g.winner,
		WinningLine: g.winningLine,
	}
	for i, c := range g.board {
		v.Board[i] = string(c)
	}
	return v
}
