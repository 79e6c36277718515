package service

import (
	"context"
	"sync"
	"time"

	"clinicore/internal/booking/repository"
	"clinicore/pkg/config"
)

// Sweeper deletes expired lock rows on an interval. It is a janitor, not a
// correctness mechanism: expired locks already stop counting because every
// capacity query filters on expires_at, and the store's TTL index removes
// rows on its own schedule. The sweeper just keeps the collections small
// and the deletions observable.
type Sweeper struct {
	locks     repository.LockLedger
	admission repository.AdmissionGate
	cfg       *config.Config

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewSweeper(locks repository.LockLedger, admission repository.AdmissionGate, cfg *config.Config) *Sweeper {
	return &Sweeper{
		locks:     locks,
		admission: admission,
		cfg:       cfg,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
	s.cfg.Log.Info("Lock sweeper started", "interval", s.cfg.SweepInterval)
}

// Stop blocks until an in-flight sweep finishes. Safe to call more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()

	swept, err := s.locks.DeleteExpired(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Failed to sweep expired slot locks", "error", err)
	} else if swept > 0 {
		s.cfg.Log.Info("Swept expired slot locks", "count", swept)
	}

	admissions, err := s.admission.DeleteExpired(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Failed to sweep expired admission locks", "error", err)
	} else if admissions > 0 {
		s.cfg.Log.Info("Swept expired admission locks", "count", admissions)
	}
}
