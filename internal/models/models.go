// internal/models/models.go
package models

import "github.com/google/uuid"

// GameType identifies which rule engine a match runs on.
type GameType string

const (
	GameTicTacToe   GameType = "tictactoe"
	GameConnectFour GameType = "connectfour"
	GameCardDuel    GameType = "cardduel"
)

// Position is a participant's last-known location in the world, carried so
// spectator listings can place the match marker without asking the world
// service.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Participant is one of the two players in a match.
type Participant struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Appearance string    `json:"appearance,omitempty"` // cosmetic descriptor, passed through verbatim
	Position   Position  `json:"position"`
}

// Challenge carries the already-validated parameters of an accepted challenge.
// The challenge/invitation flow upstream owns validation (affordability,
// consent, locality); the arena assumes these hold.
type Challenge struct {
	GameType    GameType    `json:"gameType"`
	Challenger  Participant `json:"challenger"`
	Target      Participant `json:"target"`
	WagerAmount int64       `json:"wagerAmount"`
	Room        string      `json:"room,omitempty"`
}

// Settlement is the payload returned from voiding a match, consumed by the
// external coin ledger. The arena never transfers coins itself.
type Settlement struct {
	MatchID        uuid.UUID    `json:"matchId"`
	ParticipantIDs [2]uuid.UUID `json:"participantIds"`
	WagerAmount    int64        `json:"wagerAmount"`
	Reason         string       `json:"reason"`
}

// TerminalEvent is emitted exactly once when a match leaves the active state.
// The settlement/statistics collaborator consumes it; the arena never calls
// that collaborator directly so recording stays exactly-once under the
// caller's control.
type TerminalEvent struct {
	MatchID        uuid.UUID    `json:"matchId"`
	GameType       GameType     `json:"gameType"`
	ParticipantIDs [2]uuid.UUID `json:"participantIds"`
	WagerAmount    int64        `json:"wagerAmount"`
	PotAmount      int64        `json:"potAmount"`          // 2x wager on a decisive win, else 0
	WinnerID       uuid.UUID    `json:"winnerId,omitempty"` // uuid.Nil on draw or void
	Draw           bool         `json:"draw"`
	VoidReason     string       `json:"voidReason,omitempty"`
}
