// internal/gateway/gateway.go
//
// Package gateway is the WebSocket session layer in front of the arena. It
// owns connection and room registries, implements the arena's push and
// room-broadcast callbacks, and translates inbound session messages into
// arena calls. Identity is taken from the join message; session
// authentication lives upstream of this service.
package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pocketrealm/arena-service/internal/arena"
)

const writeTimeout = 5 * time.Second

// session is one connected participant or spectator.
type session struct {
	participantID uuid.UUID
	room          string
	conn          *websocket.Conn

	mu     sync.Mutex // serializes writes on conn
	closed bool
}

func (s *session) send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, payload)
}

func (s *session) close(code websocket.StatusCode, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.conn.Close(code, reason)
}

// Gateway holds the live session registries and bridges them to the arena.
type Gateway struct {
	arena *arena.Manager

	mu       sync.Mutex
	sessions map[uuid.UUID]*session            // participant id -> session
	rooms    map[string]map[uuid.UUID]*session // room -> sessions in it
}

// New wires a gateway to the manager and installs itself as the manager's
// fan-out callbacks.
func New(m *arena.Manager) *Gateway {
	gw := &Gateway{
		arena:    m,
		sessions: make(map[uuid.UUID]*session),
		rooms:    make(map[string]map[uuid.UUID]*session),
	}
	m.PushFn = gw.Push
	m.BroadcastRoomFn = gw.BroadcastRoom
	return gw
}

// Push delivers an event to one participant's session, if connected.
func (gw *Gateway) Push(participantID uuid.UUID, ev arena.Event) {
	gw.mu.Lock()
	s, ok := gw.sessions[participantID]
	gw.mu.Unlock()
	if !ok {
		return
	}
	gw.deliver(s, ev)
}

// BroadcastRoom delivers an event to every session in a room except the
// excluded participants.
func (gw *Gateway) BroadcastRoom(room string, exclude [2]uuid.UUID, ev arena.Event) {
	gw.mu.Lock()
	var targets []*session
	for id, s := range gw.rooms[room] {
		if id == exclude[0] || id == exclude[1] {
			continue
		}
		targets = append(targets, s)
	}
	gw.mu.Unlock()

	for _, s := range targets {
		gw.deliver(s, ev)
	}
}

func (gw *Gateway) deliver(s *session, ev arena.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("gateway: marshal event %s: %v", ev.Type, err)
		return
	}
	if err := s.send(payload); err != nil {
		log.Warnf("gateway: write to %s failed: %v", s.participantID, err)
	}
}

// register indexes a session by participant and room, closing any stale
// session for the same participant.
func (gw *Gateway) register(s *session) {
	gw.mu.Lock()
	prev, had := gw.sessions[s.participantID]
	gw.sessions[s.participantID] = s
	if s.room != "" {
		if gw.rooms[s.room] == nil {
			gw.rooms[s.room] = make(map[uuid.UUID]*session)
		}
		gw.rooms[s.room][s.participantID] = s
	}
	gw.mu.Unlock()

	if had {
		log.Infof("gateway: replacing stale session for %s", s.participantID)
		prev.close(websocket.StatusPolicyViolation, "superseded by newer session")
	}
}

// unregister drops a session and voids its active match via the arena's
// disconnect policy.
func (gw *Gateway) unregister(s *session) {
	gw.mu.Lock()
	current, ok := gw.sessions[s.participantID]
	if ok && current == s {
		delete(gw.sessions, s.participantID)
	}
	if s.room != "" {
		if members := gw.rooms[s.room]; members != nil && members[s.participantID] == s {
			delete(members, s.participantID)
			if len(members) == 0 {
				delete(gw.rooms, s.room)
			}
		}
	}
	gw.mu.Unlock()

	// A superseded session must not void the participant's match; the
	// replacement session is still live.
	if ok && current == s {
		gw.arena.HandleDisconnect(s.participantID)
	}
}
