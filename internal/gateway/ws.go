// internal/gateway/ws.go
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// clientMessage is the inbound session message envelope.
type clientMessage struct {
	Type    string    `json:"type"`    // join, move, state, room_matches
	ID      uuid.UUID `json:"id"`      // participant id (join)
	Room    string    `json:"room"`    // join, room_matches
	MatchID uuid.UUID `json:"matchId"` // move, state
	Input   int       `json:"input"`   // move
}

// serverMessage wraps responses that are not arena events.
type serverMessage struct {
	Type    string      `json:"type"`
	MatchID uuid.UUID   `json:"matchId,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router builds the gateway's HTTP surface.
func (gw *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ws", gw.handleWS)
	return r
}

// handleWS upgrades the connection and runs the session read loop. The
// first message must be a join naming the participant and room.
func (gw *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Warnf("gateway: websocket accept: %v", err)
		return
	}

	ctx := r.Context()

	join, err := readMessage(ctx, conn)
	if err != nil || join.Type != "join" || join.ID == uuid.Nil {
		conn.Close(websocket.StatusPolicyViolation, "expected join message")
		return
	}

	s := &session{participantID: join.ID, room: join.Room, conn: conn}
	gw.register(s)
	log.Infof("gateway: %s joined (room %q)", s.participantID, s.room)

	defer func() {
		gw.unregister(s)
		s.close(websocket.StatusNormalClosure, "session ended")
		log.Infof("gateway: %s left", s.participantID)
	}()

	for {
		msg, err := readMessage(ctx, conn)
		if err != nil {
			return
		}
		gw.dispatch(s, msg)
	}
}

func readMessage(ctx context.Context, conn *websocket.Conn) (clientMessage, error) {
	var msg clientMessage
	_, data, err := conn.Read(ctx)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}

func (gw *Gateway) dispatch(s *session, msg clientMessage) {
	switch msg.Type {
	case "move":
		res := gw.arena.SubmitMove(msg.MatchID, s.participantID, msg.Input)
		gw.reply(s, serverMessage{Type: "move_result", MatchID: msg.MatchID, Result: res})
	case "state":
		view := gw.arena.GetMatchState(msg.MatchID, s.participantID)
		if view == nil {
			gw.reply(s, serverMessage{Type: "state_result", MatchID: msg.MatchID, Error: "match_not_found"})
			return
		}
		gw.reply(s, serverMessage{Type: "state_result", MatchID: msg.MatchID, Result: view})
	case "room_matches":
		room := msg.Room
		if room == "" {
			room = s.room
		}
		gw.reply(s, serverMessage{Type: "room_matches_result", Result: gw.arena.GetMatchesInRoom(room)})
	default:
		log.Warnf("gateway: unknown message type %q from %s", msg.Type, s.participantID)
		gw.reply(s, serverMessage{Type: "error", Error: "unknown_message_type"})
	}
}

func (gw *Gateway) reply(s *session, msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("gateway: marshal reply %s: %v", msg.Type, err)
		return
	}
	if err := s.send(payload); err != nil {
		log.Warnf("gateway: reply to %s failed: %v", s.participantID, err)
	}
}
