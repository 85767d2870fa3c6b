// internal/engine/engine.go
//
// Package engine holds the three rule engines behind one polymorphic
// contract. Engines are pure state machines: they validate and apply moves,
// detect terminal positions and render per-viewer projections. They know
// nothing about matches, wagers, timers or transport; the arena layer owns
// all of that.
package engine

import "time"

// Seat indexes the two participants of a match. Seat1 always moves first.
type Seat uint8

const (
	Seat1 Seat = 0
	Seat2 Seat = 1
)

// Other returns the opposing seat.
func (s Seat) Other() Seat { return 1 - s }

// Label returns the wire identifier for a seat.
func (s Seat) Label() string {
	if s == Seat1 {
		return "participant1"
	}
	return "participant2"
}

// Viewer identifies the perspective a projection is rendered for.
type Viewer int8

const (
	ViewerSeat1     Viewer = 0
	ViewerSeat2     Viewer = 1
	ViewerSpectator Viewer = 2
)

// ViewerForSeat converts a seat into its viewer perspective.
func ViewerForSeat(s Seat) Viewer { return Viewer(s) }

// Phase is a game-specific sub-state within an active match.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseSelect   Phase = "select"
	PhaseReveal   Phase = "reveal"
	PhaseComplete Phase = "complete"
)

// ErrorCode enumerates the discriminated failure values a move can produce.
// Resource-class codes (match lookup) are produced by the arena layer;
// validation- and state-class codes come from the engines.
type ErrorCode string

const (
	ErrMatchNotFound   ErrorCode = "match_not_found"
	ErrMatchNotActive  ErrorCode = "match_not_active"
	ErrNotInMatch      ErrorCode = "not_in_match"
	ErrNotYourTurn     ErrorCode = "not_your_turn"
	ErrGameOver        ErrorCode = "game_over"
	ErrInvalidCell     ErrorCode = "invalid_cell"
	ErrCellTaken       ErrorCode = "cell_taken"
	ErrInvalidColumn   ErrorCode = "invalid_column"
	ErrColumnFull      ErrorCode = "column_full"
	ErrInvalidCard     ErrorCode = "invalid_card"
	ErrNotSelectPhase  ErrorCode = "not_select_phase"
	ErrAlreadySelected ErrorCode = "already_selected"
)

// MoveResult is the discriminated outcome of a move submission. Either
// Success is true (with optional terminal flags) or Error carries a code.
// Results are plain values; engines never panic or return Go errors across
// the boundary.
type MoveResult struct {
	Success      bool      `json:"success"`
	GameComplete bool      `json:"gameComplete,omitempty"`
	IsDraw       bool      `json:"isDraw,omitempty"`
	BothSelected bool      `json:"bothSelected,omitempty"`
	Error        ErrorCode `json:"error,omitempty"`
}

// Failure builds an error-carrying MoveResult.
func Failure(code ErrorCode) MoveResult { return MoveResult{Error: code} }

// Outcome describes a terminal position. Winner is meaningful only when
// Done is true and Draw is false.
type Outcome struct {
	Done   bool
	Draw   bool
	Winner Seat
}

// ForcedMove is one default input the timeout policy injects for a seat.
type ForcedMove struct {
	Seat  Seat
	Input int
}

// Game is the polymorphic rule-engine contract. Exactly three
// implementations exist: TicTacToe, ConnectFour and CardDuel. Adding a
// fourth game means adding a fourth implementation and a constructor case
// in the arena, nothing else.
//
// Implementations are not safe for concurrent use; the arena serializes
// access under its own lock.
type Game interface {
	// ApplyMove validates and applies input on behalf of seat. Input
	// semantics are game-specific: cell index [0,8], column index [0,6] or
	// hand index [0,4]. now stamps any turn-clock reset.
	ApplyMove(seat Seat, input int, now time.Time) MoveResult

	// ForcedMoves returns the default inputs the timeout policy would
	// inject right now, in application order. Empty when no forced move
	// applies (terminal position, or a phase that is not waiting on input).
	ForcedMoves() []ForcedMove

	// TurnStartedAt reports when the current turn clock started.
	TurnStartedAt() time.Time

	// Outcome reports the terminal result, if play has reached one.
	Outcome() Outcome

	// Project renders the state as seen by viewer, concealing whatever that
	// viewer is not entitled to see. The result is JSON-marshalable.
	Project(v Viewer) interface{}
}
