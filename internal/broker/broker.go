// internal/broker/broker.go
//
// Package broker publishes terminal match events and settlement payloads to
// NATS for the ledger and statistics collaborators. The arena never calls
// those collaborators directly; they consume these subjects so coin
// transfer and win/loss recording stay exactly-once on their side.
package broker

import (
	"encoding/json"
	"os"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/pocketrealm/arena-service/internal/models"
)

const (
	SubjectChallengeAccepted = "arena.challenge.accepted"
	SubjectMatchEnd          = "arena.match.end"
	SubjectSettlement        = "arena.settlement"
)

type Broker struct {
	Conn *nats.Conn

	// CreateMatchFn receives accepted challenges consumed from NATS. The
	// matchmaking collaborator validates them before publishing.
	CreateMatchFn func(models.Challenge)
}

// Connect dials the NATS server from NATS_URL (default nats.DefaultURL).
func Connect() (*Broker, error) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.Name("arena-service"))
	if err != nil {
		return nil, err
	}
	log.Infof("NATS connection established at %s", url)
	return &Broker{Conn: nc}, nil
}

// SubscribeChallenges consumes accepted challenges and feeds them to
// CreateMatchFn. This is the service's match-creation ingress.
func (b *Broker) SubscribeChallenges() (*nats.Subscription, error) {
	return b.Conn.Subscribe(SubjectChallengeAccepted, func(msg *nats.Msg) {
		b.consumeChallenge(msg.Data)
	})
}

func (b *Broker) consumeChallenge(data []byte) {
	var ch models.Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		log.Errorf("unmarshal challenge from %s: %v", SubjectChallengeAccepted, err)
		return
	}
	if b.CreateMatchFn == nil {
		log.Warnf("challenge for %s dropped, CreateMatchFn is nil", ch.GameType)
		return
	}
	b.CreateMatchFn(ch)
}

// PublishMatchEnd emits the one-shot terminal event for a match.
func (b *Broker) PublishMatchEnd(ev models.TerminalEvent) {
	b.publish(SubjectMatchEnd, ev)
}

// PublishSettlement emits a void settlement payload for the coin ledger.
func (b *Broker) PublishSettlement(s models.Settlement) {
	b.publish(SubjectSettlement, s)
}

func (b *Broker) publish(subject string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal for %s: %v", subject, err)
		return
	}
	if err := b.Conn.Publish(subject, payload); err != nil {
		log.Errorf("publish to %s: %v", subject, err)
	}
}

// Close drains the connection.
func (b *Broker) Close() {
	if b.Conn != nil {
		b.Conn.Close()
	}
}
