// internal/cache/cache.go
//
// Package cache publishes match lifecycle actions to a Redis queue for the
// external historian. Publishing is fire and forget; match flow never waits
// on Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil until Init succeeds; callers must
// check before publishing.
var Rdb *redis.Client

// matchActionQueue is the list the historian consumes from.
const matchActionQueue = "arena:match_actions"

// Init connects the shared client using REDIS_ADDR and REDIS_PASSWORD.
func Init(ctx context.Context) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	log.Infof("redis connection established at %s", addr)
	return nil
}

// MatchActionRecord is one journal entry in a match's action stream.
type MatchActionRecord struct {
	MatchID       uuid.UUID              `json:"matchId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorID       uuid.UUID              `json:"actorId"` // Nil for lifecycle events.
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"`
}

// PublishMatchAction pushes one record onto the historian queue.
func PublishMatchAction(ctx context.Context, rec MatchActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal match action: %w", err)
	}
	if err := Rdb.LPush(ctx, matchActionQueue, data).Err(); err != nil {
		return fmt.Errorf("lpush match action: %w", err)
	}
	return nil
}
