// internal/arena/manager.go
//
// Package arena owns the live match registry and the lifecycle controller:
// creation from accepted challenges, move dispatch, timeout-driven
// auto-play, void/complete resolution and visibility-scoped state fan-out.
package arena

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pocketrealm/arena-service/internal/cache"
	"github.com/pocketrealm/arena-service/internal/engine"
	"github.com/pocketrealm/arena-service/internal/models"
)

// EventType labels the match events pushed to sessions.
type EventType string

const (
	EventMatchStart EventType = "match_start"
	EventMatchState EventType = "match_state"
	EventMatchEnd   EventType = "match_end"
	EventRoomMatch  EventType = "room_match_state"
)

// Event is the fan-out envelope handed to the push callbacks.
type Event struct {
	Type    EventType              `json:"type"`
	MatchID uuid.UUID              `json:"matchId"`
	State   interface{}            `json:"state,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// PushFunc sends an event to a single participant's session.
type PushFunc func(participantID uuid.UUID, ev Event)

// BroadcastRoomFunc sends an event to every session in a room except the
// listed participants, who receive their richer view via PushFunc.
type BroadcastRoomFunc func(room string, exclude [2]uuid.UUID, ev Event)

// OnMatchEndFunc runs exactly once per match, when it leaves the active
// state. The settlement/statistics collaborator consumes the payload.
type OnMatchEndFunc func(ev models.TerminalEvent)

// Manager is the match registry and lifecycle controller. One mutex
// serializes every mutation path: inbound moves, sweep ticks, deferred
// round advances and disconnects.
type Manager struct {
	mu            sync.Mutex
	matches       map[uuid.UUID]*Match
	byParticipant map[uuid.UUID]uuid.UUID

	// TurnTimeLimit bounds one turn; the sweep forces a move past it.
	TurnTimeLimit time.Duration
	// RevealDelay is the card-duel pause between reveal and the next round.
	RevealDelay time.Duration
	// SweepInterval is the timeout scheduler cadence.
	SweepInterval time.Duration

	PushFn          PushFunc
	BroadcastRoomFn BroadcastRoomFunc
	OnMatchEnd      OnMatchEndFunc

	sched scheduler
}

// Settings are the manager's timing knobs. Zero values fall back to the
// defaults: 30 s turn limit, 2 s reveal pause, 1 s sweep cadence.
type Settings struct {
	TurnTimeLimit time.Duration
	RevealDelay   time.Duration
	SweepInterval time.Duration
}

// NewManager builds a registry and starts its timeout scheduler. Settings
// are fixed before the scheduler goroutine starts; the sweep reads them
// concurrently. Callers assign the fan-out callbacks before creating
// matches and must call Dispose when done.
func NewManager(s Settings) *Manager {
	if s.TurnTimeLimit == 0 {
		s.TurnTimeLimit = 30 * time.Second
	}
	if s.RevealDelay == 0 {
		s.RevealDelay = 2 * time.Second
	}
	if s.SweepInterval == 0 {
		s.SweepInterval = time.Second
	}
	m := &Manager{
		matches:       make(map[uuid.UUID]*Match),
		byParticipant: make(map[uuid.UUID]uuid.UUID),
		TurnTimeLimit: s.TurnTimeLimit,
		RevealDelay:   s.RevealDelay,
		SweepInterval: s.SweepInterval,
	}
	m.startScheduler()
	return m
}

// CreateMatch allocates an active match from an accepted challenge and
// registers both participants. The challenge arrives already validated
// upstream, so there is no error path; an unknown game type is an internal
// anomaly and yields nil.
func (m *Manager) CreateMatch(ch models.Challenge) *Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	seed := uint64(now.UnixNano())

	var g engine.Game
	switch ch.GameType {
	case models.GameTicTacToe:
		g = engine.NewTicTacToe(now, seed)
	case models.GameConnectFour:
		g = engine.NewConnectFour(now, seed)
	case models.GameCardDuel:
		g = engine.NewCardDuel(now, seed)
	default:
		log.Errorf("create match: unknown game type %q", ch.GameType)
		return nil
	}

	mt := &Match{
		ID:           uuid.New(),
		GameType:     ch.GameType,
		Participants: [2]models.Participant{ch.Challenger, ch.Target},
		WagerAmount:  ch.WagerAmount,
		Room:         ch.Room,
		Status:       StatusActive,
		CreatedAt:    now,
		Game:         g,
	}

	m.matches[mt.ID] = mt
	for _, pid := range mt.participantIDs() {
		if prev, ok := m.byParticipant[pid]; ok {
			log.Warnf("match %s: participant %s still indexed to match %s, overwriting", mt.ID, pid, prev)
		}
		m.byParticipant[pid] = mt.ID
	}

	m.logAction(mt, uuid.Nil, "match_create", map[string]interface{}{
		"gameType": string(ch.GameType),
		"wager":    ch.WagerAmount,
		"room":     ch.Room,
	})
	log.Infof("match %s: created (%s, wager %d, room %q)", mt.ID, mt.GameType, mt.WagerAmount, mt.Room)

	m.pushToParticipants(mt, EventMatchStart)
	m.broadcastToRoom(mt, EventRoomMatch)
	return mt
}

// SubmitMove dispatches a participant's move to the match's rule engine and
// returns the engine's discriminated result unchanged.
func (m *Manager) SubmitMove(matchID, participantID uuid.UUID, input int) engine.MoveResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.matches[matchID]
	if !ok {
		return engine.Failure(engine.ErrMatchNotFound)
	}
	if mt.Status != StatusActive {
		return engine.Failure(engine.ErrMatchNotActive)
	}
	seat, ok := mt.seatOf(participantID)
	if !ok {
		return engine.Failure(engine.ErrNotInMatch)
	}
	return m.applyMove(mt, seat, input, "move")
}

// applyMove runs one move through the single processing path shared by
// player moves and forced moves: engine apply, journal, terminal or reveal
// handling, then state fan-out.
// Assumes lock is held by caller.
func (m *Manager) applyMove(mt *Match, seat engine.Seat, input int, action string) engine.MoveResult {
	res := mt.Game.ApplyMove(seat, input, time.Now())
	if res.Error != "" {
		return res
	}

	m.logAction(mt, mt.Participants[seat].ID, action, map[string]interface{}{
		"seat":  seat.Label(),
		"input": input,
	})

	if res.GameComplete {
		// completeMatch does its own terminal fan-out; a trailing state
		// push here would land after match_end.
		m.completeMatch(mt)
		return res
	}
	if res.BothSelected {
		m.scheduleRevealAdvance(mt)
	}

	m.pushToParticipants(mt, EventMatchState)
	m.broadcastToRoom(mt, EventRoomMatch)
	return res
}

// scheduleRevealAdvance arms the card-duel reveal pause. The fired callback
// re-acquires the lock and re-validates that the match is still active and
// the game still sits in the reveal phase before touching anything.
// Assumes lock is held by caller.
func (m *Manager) scheduleRevealAdvance(mt *Match) {
	mt.stopRevealTimer()
	matchID := mt.ID
	mt.revealTimer = time.AfterFunc(m.RevealDelay, func() {
		m.advanceRevealedRound(matchID)
	})
}

// advanceRevealedRound resumes a card duel after the reveal pause. Guarded:
// a match voided or completed during the pause is left untouched, and
// AdvanceRound itself no-ops outside the reveal phase.
func (m *Manager) advanceRevealedRound(matchID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.matches[matchID]
	if !ok || mt.Status != StatusActive {
		return
	}
	duel, ok := mt.Game.(*engine.CardDuel)
	if !ok {
		log.Warnf("match %s: reveal advance on non card-duel game", matchID)
		return
	}
	mt.revealTimer = nil

	duel.AdvanceRound(time.Now())
	m.logAction(mt, uuid.Nil, "round_advance", nil)
	m.pushToParticipants(mt, EventMatchState)
	m.broadcastToRoom(mt, EventRoomMatch)
}

// completeMatch finalizes a decisively ended match: terminal status, winner
// bookkeeping, registry unregistration and the one-shot terminal event. The
// match record itself stays queryable until EndMatch.
// Assumes lock is held by caller.
func (m *Manager) completeMatch(mt *Match) {
	now := time.Now()
	mt.Status = StatusComplete
	mt.EndedAt = &now
	mt.stopRevealTimer()

	out := mt.Game.Outcome()
	ev := models.TerminalEvent{
		MatchID:        mt.ID,
		GameType:       mt.GameType,
		ParticipantIDs: mt.participantIDs(),
		WagerAmount:    mt.WagerAmount,
		Draw:           out.Draw,
	}
	if out.Draw {
		mt.Draw = true
	} else {
		mt.WinnerID = mt.Participants[out.Winner].ID
		ev.WinnerID = mt.WinnerID
		ev.PotAmount = 2 * mt.WagerAmount
	}

	m.unregisterParticipants(mt)
	m.logAction(mt, uuid.Nil, "match_complete", map[string]interface{}{
		"winnerId": mt.WinnerID,
		"draw":     mt.Draw,
	})
	log.Infof("match %s: complete (winner %s, draw %v)", mt.ID, mt.WinnerID, mt.Draw)

	m.fireMatchEnd(ev)
	m.pushToParticipants(mt, EventMatchEnd)
	m.broadcastToRoom(mt, EventRoomMatch)
}

// VoidMatch abandons an active match without a winner. Idempotent: a match
// already complete or void (or unknown) is a no-op returning nil. Otherwise
// it returns the settlement payload for the external ledger.
func (m *Manager) VoidMatch(matchID uuid.UUID, reason string) *models.Settlement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voidMatch(matchID, reason)
}

// voidMatch is VoidMatch without the lock, shared with HandleDisconnect.
// Assumes lock is held by caller.
func (m *Manager) voidMatch(matchID uuid.UUID, reason string) *models.Settlement {
	mt, ok := m.matches[matchID]
	if !ok || mt.Status != StatusActive {
		return nil
	}

	now := time.Now()
	mt.Status = StatusVoid
	mt.EndedAt = &now
	mt.VoidReason = reason
	mt.stopRevealTimer()

	m.unregisterParticipants(mt)
	m.logAction(mt, uuid.Nil, "match_void", map[string]interface{}{"reason": reason})
	log.Infof("match %s: voided (%s)", mt.ID, reason)

	m.fireMatchEnd(models.TerminalEvent{
		MatchID:        mt.ID,
		GameType:       mt.GameType,
		ParticipantIDs: mt.participantIDs(),
		WagerAmount:    mt.WagerAmount,
		VoidReason:     reason,
	})
	m.pushToParticipants(mt, EventMatchEnd)
	m.broadcastToRoom(mt, EventRoomMatch)

	return &models.Settlement{
		MatchID:        mt.ID,
		ParticipantIDs: mt.participantIDs(),
		WagerAmount:    mt.WagerAmount,
		Reason:         reason,
	}
}

// EndMatch drops an already-terminal match record from the registry. Active
// matches are not endable this way; void or complete them first.
func (m *Manager) EndMatch(matchID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.matches[matchID]
	if !ok {
		return
	}
	if mt.Status == StatusActive {
		log.Warnf("match %s: EndMatch called while still active, ignoring", matchID)
		return
	}
	m.unregisterParticipants(mt)
	delete(m.matches, matchID)
}

// HandleDisconnect voids the disconnected participant's active match, if
// any. Idempotent: no registered match, or a terminal one, is a no-op.
func (m *Manager) HandleDisconnect(participantID uuid.UUID) *models.Settlement {
	m.mu.Lock()
	defer m.mu.Unlock()

	matchID, ok := m.byParticipant[participantID]
	if !ok {
		return nil
	}
	log.Infof("participant %s disconnected, voiding match %s", participantID, matchID)
	return m.voidMatch(matchID, "disconnect")
}

// Dispose stops the timeout scheduler. Existing match records are left as
// they are.
func (m *Manager) Dispose() {
	m.stopScheduler()
}

// unregisterParticipants clears the participant index entries that still
// point at mt. Entries already overwritten by a newer match are kept.
// Assumes lock is held by caller.
func (m *Manager) unregisterParticipants(mt *Match) {
	for _, pid := range mt.participantIDs() {
		if m.byParticipant[pid] == mt.ID {
			delete(m.byParticipant, pid)
		}
	}
}

// fireMatchEnd invokes the terminal callback.
// Assumes lock is held by caller.
func (m *Manager) fireMatchEnd(ev models.TerminalEvent) {
	if m.OnMatchEnd == nil {
		log.Warnf("match %s: OnMatchEnd is nil, terminal event dropped", ev.MatchID)
		return
	}
	m.OnMatchEnd(ev)
}

// pushToParticipants sends each participant their own scoped view.
// Assumes lock is held by caller.
func (m *Manager) pushToParticipants(mt *Match, typ EventType) {
	if m.PushFn == nil {
		log.Warnf("match %s: PushFn is nil, cannot push %s", mt.ID, typ)
		return
	}
	for seat, p := range mt.Participants {
		view := m.participantView(mt, engine.Seat(seat))
		m.PushFn(p.ID, Event{Type: typ, MatchID: mt.ID, State: view})
	}
}

// broadcastToRoom fans the spectator view out to the match's room,
// excluding the two participants.
// Assumes lock is held by caller.
func (m *Manager) broadcastToRoom(mt *Match, typ EventType) {
	if mt.Room == "" {
		return
	}
	if m.BroadcastRoomFn == nil {
		log.Warnf("match %s: BroadcastRoomFn is nil, cannot broadcast %s", mt.ID, typ)
		return
	}
	m.BroadcastRoomFn(mt.Room, mt.participantIDs(), Event{
		Type:    typ,
		MatchID: mt.ID,
		State:   m.spectatorListing(mt),
	})
}

// logAction journals one lifecycle action to the historian queue. The Redis
// publish runs on its own goroutine with a short deadline; match flow never
// blocks on it.
// Assumes lock is held by caller.
func (m *Manager) logAction(mt *Match, actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	mt.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.MatchActionRecord{
		MatchID:       mt.ID,
		ActionIndex:   mt.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.MatchActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishMatchAction(ctx, rec); err != nil {
			log.Errorf("match %s: failed publishing action %d (%s): %v", rec.MatchID, rec.ActionIndex, rec.ActionType, err)
		}
	}(rec)
}
