// Package scheduler runs the background refresh sweep: on a cron schedule it
// lists credentials approaching expiry and refreshes each through the token
// manager. With Redis configured, a distributed lock keeps the sweep to one
// instance; losing the lock race is a normal skip.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"token-vault/internal/common/logging"
	"token-vault/internal/locks"
	"token-vault/internal/manager"
)

// DefaultSchedule sweeps every fifteen minutes.
const DefaultSchedule = "*/15 * * * *"

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 4 * time.Minute

// SweepLocker hands out the singleton sweep lock. Nil means no coordination:
// a single-instance deployment sweeps unconditionally.
type SweepLocker interface {
	AcquireSweepLock(ctx context.Context) (locks.Lock, bool, error)
}

type Sweeper struct {
	manager  *manager.Manager
	locker   SweepLocker
	schedule string
	cron     *cron.Cron
}

func NewSweeper(mgr *manager.Manager, locker SweepLocker, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Sweeper{
		manager:  mgr,
		locker:   locker,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()

	logging.Info("Refresh sweep scheduled",
		logging.String("schedule", s.schedule),
		logging.Duration("horizon", s.manager.Horizon()))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if s.locker != nil {
		lock, ok, err := s.locker.AcquireSweepLock(ctx)
		if err != nil {
			logging.Warn("Failed to acquire sweep lock", logging.Err(err))
			return
		}
		if !ok {
			logging.Debug("Sweep lock held elsewhere, skipping this cycle")
			return
		}
		defer lock.Release(ctx)
	}

	s.Sweep(ctx)
}

// Sweep refreshes every credential inside the horizon once. One credential's
// failure never stops the rest; the outcome is returned as counts.
func (s *Sweeper) Sweep(ctx context.Context) (refreshed, failed int) {
	creds, err := s.manager.ExpiringCredentials(ctx)
	if err != nil {
		logging.Error("Failed to list expiring credentials", err)
		return 0, 0
	}
	if len(creds) == 0 {
		return 0, 0
	}

	logging.Info("Refresh sweep started", logging.Int("candidates", len(creds)))

	for _, cred := range creds {
		if !cred.Refreshable() {
			logging.Debug("Skipping credential without refresh token",
				logging.String("user_id", cred.UserID),
				logging.String("platform", string(cred.Platform)))
			continue
		}

		if _, ok := s.manager.RefreshCredential(ctx, cred.UserID, cred.Platform); ok {
			refreshed++
		} else {
			failed++
		}
	}

	logging.Info("Refresh sweep finished",
		logging.Int("refreshed", refreshed),
		logging.Int("failed", failed))

	return refreshed, failed
}
