// internal/arena/projection.go
package arena

import (
	"time"

	"github.com/google/uuid"

	"github.com/pocketrealm/arena-service/internal/engine"
	"github.com/pocketrealm/arena-service/internal/models"
)

// ParticipantSummary is the public identity of one participant.
type ParticipantSummary struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Position models.Position `json:"position"`
}

// MatchView is the per-viewer rendering of a match. State carries the
// engine's projection for the requesting viewer; everything else is public
// match metadata.
type MatchView struct {
	MatchID           uuid.UUID             `json:"matchId"`
	GameType          models.GameType       `json:"gameType"`
	Status            Status                `json:"status"`
	Participants      [2]ParticipantSummary `json:"participants"`
	WagerAmount       int64                 `json:"wagerAmount"`
	State             interface{}           `json:"state"`
	TurnTimeRemaining int                   `json:"turnTimeRemaining"`
	WinnerID          uuid.UUID             `json:"winnerId,omitempty"`
	Draw              bool                  `json:"draw,omitempty"`
	VoidReason        string                `json:"voidReason,omitempty"`
}

// RoomMatch is one entry of a room's spectator listing.
type RoomMatch struct {
	MatchID      uuid.UUID             `json:"matchId"`
	Participants [2]ParticipantSummary `json:"participants"`
	GameType     models.GameType       `json:"gameType"`
	WagerAmount  int64                 `json:"wagerAmount"`
	State        interface{}           `json:"state"`
}

// GetMatchState returns the match rendered for participantID, or nil if the
// match does not exist. A requester who is not seated in the match gets the
// spectator rendering in the same envelope.
func (m *Manager) GetMatchState(matchID, participantID uuid.UUID) *MatchView {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.matches[matchID]
	if !ok {
		return nil
	}
	seat, seated := mt.seatOf(participantID)
	if !seated {
		v := m.spectatorView(mt)
		return &v
	}
	v := m.participantView(mt, seat)
	return &v
}

// GetMatchesInRoom lists every active match in a room using the spectator
// projection.
func (m *Manager) GetMatchesInRoom(room string) []RoomMatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []RoomMatch
	for _, mt := range m.matches {
		if mt.Status != StatusActive || mt.Room != room {
			continue
		}
		out = append(out, m.spectatorListing(mt))
	}
	return out
}

// participantView renders the match for one seat, including the derived
// turn clock.
// Assumes lock is held by caller.
func (m *Manager) participantView(mt *Match, seat engine.Seat) MatchView {
	v := m.baseView(mt)
	v.State = mt.Game.Project(engine.ViewerForSeat(seat))
	return v
}

// spectatorView renders the match for a non-participant.
// Assumes lock is held by caller.
func (m *Manager) spectatorView(mt *Match) MatchView {
	v := m.baseView(mt)
	v.State = mt.Game.Project(engine.ViewerSpectator)
	return v
}

// spectatorListing renders one room-broadcast entry.
// Assumes lock is held by caller.
func (m *Manager) spectatorListing(mt *Match) RoomMatch {
	return RoomMatch{
		MatchID:      mt.ID,
		Participants: summarize(mt),
		GameType:     mt.GameType,
		WagerAmount:  mt.WagerAmount,
		State:        mt.Game.Project(engine.ViewerSpectator),
	}
}

func (m *Manager) baseView(mt *Match) MatchView {
	return MatchView{
		MatchID:           mt.ID,
		GameType:          mt.GameType,
		Status:            mt.Status,
		Participants:      summarize(mt),
		WagerAmount:       mt.WagerAmount,
		TurnTimeRemaining: m.turnTimeRemaining(mt),
		WinnerID:          mt.WinnerID,
		Draw:              mt.Draw,
		VoidReason:        mt.VoidReason,
	}
}

// turnTimeRemaining derives the whole seconds left on the current turn:
// max(0, ceil((limit - elapsed) / 1s)).
func (m *Manager) turnTimeRemaining(mt *Match) int {
	if mt.Status != StatusActive {
		return 0
	}
	left := m.TurnTimeLimit - time.Since(mt.Game.TurnStartedAt())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

func summarize(mt *Match) [2]ParticipantSummary {
	var out [2]ParticipantSummary
	for i, p := range mt.Participants {
		out[i] = ParticipantSummary{ID: p.ID, Name: p.Name, Position: p.Position}
	}
	return out
}
