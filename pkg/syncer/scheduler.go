package syncer

import (
	"context"
	"errors"
	"log"
	"time"
)

// Scheduler drives the orchestrator: a recurring timer plus an on-demand
// trigger, both funneled into the same entry point. A failed cycle
// shortens the next wait to the recovery interval.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration
	recovery time.Duration
	trigger  chan struct{}
}

func NewScheduler(orch *Orchestrator, interval, recovery time.Duration) *Scheduler {
	return &Scheduler{
		orch:     orch,
		interval: interval,
		recovery: recovery,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate sync cycle. It never blocks; a request
// arriving while one is already pending is coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Start runs the scheduling loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("[Scheduler] Starting sync loop, interval %s", s.interval)

	wait := s.interval

	for {
		select {
		case <-ctx.Done():
			log.Println("[Scheduler] Stopping sync loop")
			return
		case <-time.After(wait):
		case <-s.trigger:
			log.Println("[Scheduler] Manual sync requested")
		}

		err := s.orch.RunCycle(ctx)

		switch {
		case errors.Is(err, ErrCycleInProgress):
			log.Println("[Scheduler] Cycle already running, skipping")
			wait = s.interval

		case err != nil:
			log.Printf("[Scheduler] Sync cycle failed: %v, retrying in %s", err, s.recovery)
			wait = s.recovery

		default:
			wait = s.interval
		}
	}
}
