// internal/arena/match.go
package arena

import (
	"time"

	"github.com/google/uuid"

	"github.com/pocketrealm/arena-service/internal/engine"
	"github.com/pocketrealm/arena-service/internal/models"
)

// Status is the lifecycle state of a match. Transitions are monotonic:
// active moves to complete or void exactly once and never back.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusVoid     Status = "void"
)

// Match binds two participants, a wager and a rule engine instance. All
// mutation goes through the Manager under its lock; Match carries no lock
// of its own.
type Match struct {
	ID           uuid.UUID             `json:"id"`
	GameType     models.GameType       `json:"gameType"`
	Participants [2]models.Participant `json:"participants"`
	WagerAmount  int64                 `json:"wagerAmount"`
	Room         string                `json:"room,omitempty"`
	Status       Status                `json:"status"`
	CreatedAt    time.Time             `json:"createdAt"`
	EndedAt      *time.Time            `json:"endedAt,omitempty"`
	WinnerID     uuid.UUID             `json:"winnerId,omitempty"`
	Draw         bool                  `json:"draw,omitempty"`
	VoidReason   string                `json:"voidReason,omitempty"`

	Game engine.Game `json:"-"`

	// Pending card-duel round advancement, if any. Stopped on any terminal
	// transition; the callback re-checks state anyway.
	revealTimer *time.Timer

	actionIndex int
}

// seatOf maps a participant id to their seat.
func (mt *Match) seatOf(participantID uuid.UUID) (engine.Seat, bool) {
	switch participantID {
	case mt.Participants[engine.Seat1].ID:
		return engine.Seat1, true
	case mt.Participants[engine.Seat2].ID:
		return engine.Seat2, true
	}
	return 0, false
}

// participantIDs returns both ids in seat order.
func (mt *Match) participantIDs() [2]uuid.UUID {
	return [2]uuid.UUID{
		mt.Participants[engine.Seat1].ID,
		mt.Participants[engine.Seat2].ID,
	}
}

// stopRevealTimer halts any pending round advancement.
// Assumes lock is held by caller.
func (mt *Match) stopRevealTimer() {
	if mt.revealTimer != nil {
		mt.revealTimer.Stop()
		mt.revealTimer = nil
	}
}
