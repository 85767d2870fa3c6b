// internal/arena/scheduler.go
package arena

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

type scheduler interface {
	Shutdown() error
}

// startScheduler arms the timeout sweep at the manager's cadence. Sweep
// runs independently of move traffic; the shared lock keeps it from
// interleaving with inbound moves.
func (m *Manager) startScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Errorf("timeout scheduler init failed: %v", err)
		return
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(m.SweepInterval),
		gocron.NewTask(m.sweep),
	); err != nil {
		log.Errorf("timeout scheduler job failed: %v", err)
		return
	}
	sched.Start()
	m.sched = sched
}

func (m *Manager) stopScheduler() {
	if m.sched == nil {
		return
	}
	if err := m.sched.Shutdown(); err != nil {
		log.Errorf("timeout scheduler shutdown: %v", err)
	}
	m.sched = nil
}

// sweep forces a move in every active match whose turn clock has run past
// the limit. Forced moves go through the identical apply path as player
// moves, so a successful one resets the turn clock and the match cannot
// re-trigger on the next tick.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, mt := range m.matches {
		if mt.Status != StatusActive {
			continue
		}
		if now.Sub(mt.Game.TurnStartedAt()) < m.TurnTimeLimit {
			continue
		}
		m.forceMoves(mt)
	}
}

// forceMoves applies the engine's timeout policy for one match.
// Assumes lock is held by caller.
func (m *Manager) forceMoves(mt *Match) {
	for _, fm := range mt.Game.ForcedMoves() {
		if mt.Status != StatusActive {
			return
		}
		log.Infof("match %s: turn timeout, forcing input %d for %s", mt.ID, fm.Input, fm.Seat.Label())
		res := m.applyMove(mt, fm.Seat, fm.Input, "timeout_forced_move")
		if res.Error != "" {
			log.Warnf("match %s: forced move rejected (%s)", mt.ID, res.Error)
			return
		}
	}
}

var _ scheduler = (gocron.Scheduler)(nil)
