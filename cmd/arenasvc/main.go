package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pocketrealm/arena-service/internal/arena"
	"github.com/pocketrealm/arena-service/internal/broker"
	"github.com/pocketrealm/arena-service/internal/cache"
	"github.com/pocketrealm/arena-service/internal/config"
	"github.com/pocketrealm/arena-service/internal/gateway"
	"github.com/pocketrealm/arena-service/internal/models"
)

const serviceName = "arena"

func init() {
	config.Logging()
	config.LoadEnv()
}

func main() {
	cfg := config.Load()

	// Redis journal is optional; without it the arena just skips journaling.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cache.Init(ctx); err != nil {
		log.Warnf("redis unavailable, match journaling disabled: %v", err)
	}
	cancel()

	b, err := broker.Connect()
	if err != nil {
		log.Fatalf("unable to connect to NATS server: %v", err)
	}
	defer b.Close()

	m := arena.NewManager(arena.Settings{
		TurnTimeLimit: cfg.TurnTimeLimit,
		RevealDelay:   cfg.RevealDelay,
	})
	defer m.Dispose()

	m.OnMatchEnd = func(ev models.TerminalEvent) {
		b.PublishMatchEnd(ev)
		if ev.VoidReason != "" {
			b.PublishSettlement(models.Settlement{
				MatchID:        ev.MatchID,
				ParticipantIDs: ev.ParticipantIDs,
				WagerAmount:    ev.WagerAmount,
				Reason:         ev.VoidReason,
			})
		}
	}

	gw := gateway.New(m)

	// Match-creation ingress: the matchmaking collaborator publishes
	// accepted challenges on NATS.
	b.CreateMatchFn = func(ch models.Challenge) {
		if mt := m.CreateMatch(ch); mt != nil {
			log.Infof("challenge accepted, match %s created", mt.ID)
		}
	}
	sub, err := b.SubscribeChallenges()
	if err != nil {
		log.Fatalf("unable to subscribe to %s: %v", broker.SubjectChallengeAccepted, err)
	}
	defer sub.Unsubscribe()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      gw.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at %s", serviceName, server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown failed: %v", serviceName, err)
	}
	log.Infof("%s service gracefully stopped", serviceName)
}
