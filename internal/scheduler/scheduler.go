// Package scheduler drives materialization passes: one on start, one per
// interval tick, and one on demand via Notify. Passes are serialized; a
// tick that arrives while a pass is running waits for it.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Syncer interface {
	SyncRecurringTransactions(ctx context.Context, now time.Time) error
}

type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	notifyCh chan struct{}
	mu       sync.Mutex // serializes passes
	log      zerolog.Logger
}

func New(syncer Syncer, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		notifyCh: make(chan struct{}, 1),
		log:      log,
	}
}

// Notify triggers an immediate pass. Non-blocking if one is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("Scheduler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-s.notifyCh:
			s.log.Debug().Msg("Scheduler triggered by notification")
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single materialization pass. The pass runs to
// completion before another can start.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncer.SyncRecurringTransactions(ctx, time.Time{}); err != nil {
		s.log.Error().Err(err).Msg("Recurring sync pass failed")
	}
}
