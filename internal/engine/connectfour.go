// internal/engine/connectfour.go
package engine

import (
	"math/rand/v2"
	"time"
)

// Board geometry: 7 columns by 6 rows, row 0 at the bottom. Cells are
// addressed row-major as row*Cols+col.
const (
	c4Cols = 7
	c4Rows = 6
)

// Token is one cell of a connect-four board.
type Token string

const (
	TokenNone   Token = ""
	TokenRed    Token = "red"    // Seat1
	TokenYellow Token = "yellow" // Seat2
)

// Cell is a (row, col) board coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ConnectFour is the 7x6 gravity-drop rule engine. Seat1 plays red and
// moves first.
type ConnectFour struct {
	board         [c4Rows * c4Cols]Token
	currentTurn   Seat
	phase         Phase
	winner        string // "red", "yellow" or "draw"; empty while playing
	winningCells  []Cell
	lastMove      *Cell
	turnStartedAt time.Time
	rng           *rand.Rand
}

// NewConnectFour creates an empty board with Seat1 to move.
func NewConnectFour(now time.Time, seed uint64) *ConnectFour {
	return &ConnectFour{
		currentTurn:   Seat1,
		phase:         PhasePlaying,
		turnStartedAt: now,
		rng:           rand.New(rand.NewPCG(seed, seed^0xc2b2ae3d27d4eb4f)),
	}
}

func seatToken(s Seat) Token {
	if s == Seat1 {
		return TokenRed
	}
	return TokenYellow
}

func (g *ConnectFour) at(row, col int) Token { return g.board[row*c4Cols+col] }

// lowestEmptyRow returns the row a token dropped into col would land in,
// or -1 if the column is full.
func (g *ConnectFour) lowestEmptyRow(col int) int {
	for row := 0; row < c4Rows; row++ {
		if g.at(row, col) == TokenNone {
			return row
		}
	}
	return -1
}

// ApplyMove drops the acting seat's token into column input.
func (g *ConnectFour) ApplyMove(seat Seat, input int, now time.Time) MoveResult {
	if g.phase == PhaseComplete {
		return Failure(ErrGameOver)
	}
	if seat != g.currentTurn {
		return Failure(ErrNotYourTurn)
	}
	if input < 0 || input >= c4Cols {
		return Failure(ErrInvalidColumn)
	}
	row := g.lowestEmptyRow(input)
	if row < 0 {
		return Failure(ErrColumnFull)
	}

	token := seatToken(seat)
	g.board[row*c4Cols+input] = token
	g.lastMove = &Cell{Row: row, Col: input}

	if cells := g.winThrough(row, input, token); cells != nil {
		g.phase = PhaseComplete
		g.winner = string(token)
		g.winningCells = cells
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

// winDirections are the four axes through a placed cell: horizontal,
// vertical and both diagonals.
var winDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// winThrough collects the contiguous same-token run through (row, col) along
// each axis, walking outward in both senses. Any single axis reaching length
// 4 is sufficient; axes cannot disagree about the winner.
func (g *ConnectFour) winThrough(row, col int, token Token) []Cell {
	for _, dir := range winDirections {
		cells := []Cell{{Row: row, Col: col}}
		for _, sense := range [2]int{1, -1} {
			r, c := row+dir[0]*sense, col+dir[1]*sense
			for r >= 0 && r < c4Rows && c >= 0 && c < c4Cols && g.at(r, c) == token {
				cells = append(cells, Cell{Row: r, Col: c})
				r += dir[0] * sense
				c += dir[1] * sense
			}
		}
		if len(cells) >= 4 {
			return cells
		}
	}
	return nil
}

func (g *ConnectFour) boardFull() bool {
	for col := 0; col < c4Cols; col++ {
		if g.at(c4Rows-1, col) == TokenNone {
			return false
		}
	}
	return true
}

// ForcedMoves prefers the center column when droppable, otherwise picks
// uniformly at random among the remaining non-full columns.
func (g *ConnectFour) ForcedMoves() []ForcedMove {
	if g.phase != PhasePlaying {
		return nil
	}
	const center = 3
	if g.lowestEmptyRow(center) >= 0 {
		return []ForcedMove{{Seat: g.currentTurn, Input: center}}
	}
	var open []int
	for col := 0; col < c4Cols; col++ {
		if g.lowestEmptyRow(col) >= 0 {
			open = append(open, col)
		}
	}
	if len(open) == 0 {
		return nil
	}
	return []ForcedMove{{Seat: g.currentTurn, Input: open[g.rng.IntN(len(open))]}}
}

// TurnStartedAt reports when the current turn clock started.
func (g *ConnectFour) TurnStartedAt() time.Time { return g.turnStartedAt }

// Outcome reports the terminal result, if any.
func (g *ConnectFour) Outcome() Outcome {
	if g.phase != PhaseComplete {
		return Outcome{}
	}
	if g.winner == "draw" {
		return Outcome{Done: true, Draw: true}
	}
	winner := Seat1
	if g.winner == string(TokenYellow) {
		winner = Seat2
	}
	return Outcome{Done: true, Winner: winner}
}

// ConnectFourView is the projection of a connect-four board. Like
// tic-tac-toe, the board is fully public.
type ConnectFourView struct {
	Board        []string `json:"board"` // row-major, row 0 = bottom
	CurrentTurn  string   `json:"currentTurn"`
	Phase        Phase    `json:"phase"`
	Winner       string   `json:"winner,omitempty"`
	WinningCells []Cell   `json:"winningCells,omitempty"`
	LastMove     *Cell    `json:"lastMove,omitempty"`
}

// Project renders the board. Viewer is ignored: nothing is hidden.
func (g *ConnectFour) Project(_ Viewer) interface{} {
	v := ConnectFourView{
		Board:        make([]string, len(g.board)),
		CurrentTurn:  g.currentTurn.Label(),
		Phase:        g.phase,
		Winner:       g.winner,
		WinningCells: g.winningCells,
		LastMove:     g.lastMove,
	}
	for i, c := range g.board {
		v.Board[i] = string(c)
	}
	return v
}
