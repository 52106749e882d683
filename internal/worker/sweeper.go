package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/lottery"
	"stars-bot/internal/notify"
	"stars-bot/internal/render"
	"stars-bot/internal/session"
)

// Sweeper periodically expires draw attempts whose users never threw, then
// releases their sessions and tells them.
type Sweeper struct {
	lottery  *lottery.Engine
	sessions session.Store
	notifier *notify.Notifier
	schedule string
	log      *logrus.Entry
}

func NewSweeper(engine *lottery.Engine, sessions session.Store, notifier *notify.Notifier, schedule string, log *logrus.Entry) *Sweeper {
	return &Sweeper{
		lottery:  engine,
		sessions: sessions,
		notifier: notifier,
		schedule: schedule,
		log:      log.WithField("component", "sweeper"),
	}
}

// Run sweeps once, then on every tick of the schedule until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.log))))
	if _, err := c.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("sweep schedule %q: %w", s.schedule, err)
	}

	s.log.WithField("schedule", s.schedule).Info("Attempt sweeper started")
	s.Sweep(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Attempt sweeper stopped")
	return nil
}

// Sweep runs one expiry cycle and returns how many attempts it expired.
func (s *Sweeper) Sweep(ctx context.Context) int {
	expired, err := s.lottery.ExpireStale(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to expire stale attempts")
		return 0
	}

	for _, a := range expired {
		fields := logrus.Fields{"attempt_id": a.ID, "user_id": a.UserID}
		current, err := s.sessions.Get(ctx, a.UserID)
		if err != nil {
			s.log.WithFields(fields).WithError(err).Warn("Failed to read session of expired attempt")
			continue
		}
		// The user may already be waiting on a newer attempt.
		if current.State == session.StateWaitingDraw && current.AttemptID == a.ID {
			if err := s.sessions.Clear(ctx, a.UserID); err != nil {
				s.log.WithFields(fields).WithError(err).Warn("Failed to clear session of expired attempt")
			}
		}
		s.notifier.Notify(ctx, a.UserID, render.AttemptExpired(a.ID))
	}
	return len(expired)
}
