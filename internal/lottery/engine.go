// Package lottery runs giveaways: one active giveaway at a time, any number
// of attempts per user, and exactly one winner per giveaway.
package lottery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stars-bot/internal/guard"
	"stars-bot/internal/metrics"
	"stars-bot/internal/models"
	"stars-bot/internal/storage"
)

const DefaultHistoryLimit = 5

type Config struct {
	// WinValue is the draw value that wins; draws range over 1..MaxValue.
	WinValue       int
	MaxValue       int
	AttemptTimeout time.Duration
}

type Engine struct {
	store storage.Store
	guard guard.Guard
	cfg   Config
	log   *logrus.Entry
	now   func() time.Time
}

func NewEngine(store storage.Store, g guard.Guard, cfg Config, log *logrus.Entry) *Engine {
	if cfg.MaxValue <= 0 {
		cfg.MaxValue = 64
	}
	if cfg.WinValue <= 0 {
		cfg.WinValue = cfg.MaxValue
	}
	return &Engine{
		store: store,
		guard: g,
		cfg:   cfg,
		log:   log.WithField("component", "lottery"),
		now:   time.Now,
	}
}

// Outcome describes how a draw was resolved.
type Outcome struct {
	Attempt  models.Attempt
	Giveaway models.Giveaway
	// Won is set only for the attempt that closed the giveaway.
	Won bool
	// Voided is set when a winning value lost because the giveaway had
	// already been closed by someone else.
	Voided bool
	// GiveawayClosed is set when the giveaway was no longer active at
	// resolution time.
	GiveawayClosed bool
}

func (e *Engine) CreateGiveaway(ctx context.Context, betAmount int64, prizeRef string, creatorID int64) (models.Giveaway, error) {
	prizeRef = strings.TrimSpace(prizeRef)
	if betAmount <= 0 {
		return models.Giveaway{}, fmt.Errorf("bet amount %d: %w", betAmount, models.ErrValidation)
	}
	if prizeRef == "" {
		return models.Giveaway{}, fmt.Errorf("empty prize reference: %w", models.ErrValidation)
	}

	g := models.Giveaway{
		BetAmount: betAmount,
		PrizeRef:  prizeRef,
		CreatedBy: creatorID,
	}
	if err := e.store.CreateGiveaway(ctx, &g); err != nil {
		return models.Giveaway{}, err
	}

	metrics.Giveaways.WithLabelValues("created").Inc()
	e.log.WithFields(logrus.Fields{
		"giveaway_id": g.ID,
		"bet_amount":  betAmount,
		"created_by":  creatorID,
	}).Info("Giveaway created")
	return g, nil
}

// StopGiveaway closes an active giveaway without a winner.
func (e *Engine) StopGiveaway(ctx context.Context, id uint) (models.Giveaway, error) {
	var g models.Giveaway
	err := e.store.Transaction(ctx, func(tx storage.Store) error {
		stopped, err := tx.StopGiveaway(ctx, id)
		if err != nil {
			return err
		}
		if !stopped {
			if _, err := tx.GetGiveaway(ctx, id); err != nil {
				return err
			}
			return fmt.Errorf("giveaway #%d: %w", id, models.ErrAlreadyProcessed)
		}
		g, err = tx.GetGiveaway(ctx, id)
		return err
	})
	if err != nil {
		return models.Giveaway{}, err
	}

	metrics.Giveaways.WithLabelValues("stopped").Inc()
	e.log.WithField("giveaway_id", id).Info("Giveaway stopped")
	return g, nil
}

// StopActive stops whichever giveaway is active. It fails with ErrNotFound
// when there is none.
func (e *Engine) StopActive(ctx context.Context) (models.Giveaway, error) {
	active, err := e.store.ActiveGiveaway(ctx)
	if err != nil {
		return models.Giveaway{}, err
	}
	return e.StopGiveaway(ctx, active.ID)
}

func (e *Engine) ActiveGiveaway(ctx context.Context) (models.Giveaway, error) {
	return e.store.ActiveGiveaway(ctx)
}

func (e *Engine) Giveaway(ctx context.Context, id uint) (models.Giveaway, error) {
	return e.store.GetGiveaway(ctx, id)
}

// BeginAttempt opens a pending attempt for userID on giveawayID, which must
// be the active giveaway.
func (e *Engine) BeginAttempt(ctx context.Context, giveawayID uint, userID int64) (models.Attempt, error) {
	var attempt models.Attempt
	err := e.store.Transaction(ctx, func(tx storage.Store) error {
		active, err := tx.ActiveGiveaway(ctx)
		if errors.Is(err, models.ErrNotFound) || (err == nil && active.ID != giveawayID) {
			return fmt.Errorf("giveaway #%d: %w", giveawayID, models.ErrGiveawayClosed)
		}
		if err != nil {
			return err
		}

		attempt = models.Attempt{
			GiveawayID: giveawayID,
			UserID:     userID,
			Result:     models.AttemptPending,
			CreatedAt:  e.now().UTC(),
		}
		return tx.CreateAttempt(ctx, &attempt)
	})
	if err != nil {
		return models.Attempt{}, err
	}

	e.log.WithFields(logrus.Fields{
		"attempt_id":  attempt.ID,
		"giveaway_id": giveawayID,
		"user_id":     userID,
	}).Debug("Attempt started")
	return attempt, nil
}

// ResolveAttempt records value on a pending attempt. A winning value closes
// the giveaway only if it is still active; otherwise the attempt is lost.
// While the user's draw is being resolved, a second call for the same user
// fails with ErrAlreadyInProgress.
func (e *Engine) ResolveAttempt(ctx context.Context, attemptID uint, value int) (Outcome, error) {
	if value < 1 || value > e.cfg.MaxValue {
		return Outcome{}, fmt.Errorf("draw value %d: %w", value, models.ErrValidation)
	}
	attempt, err := e.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = guard.Do(ctx, e.guard, guard.DrawKey(attempt.UserID), func(ctx context.Context) error {
		return e.store.Transaction(ctx, func(tx storage.Store) error {
			out = Outcome{}
			current, err := tx.GetAttempt(ctx, attemptID)
			if err != nil {
				return err
			}
			if current.Result != models.AttemptPending {
				return fmt.Errorf("attempt #%d is %s: %w", attemptID, current.Result, models.ErrAlreadyProcessed)
			}
			giveaway, err := tx.GetGiveaway(ctx, current.GiveawayID)
			if err != nil {
				return err
			}

			result := models.AttemptLose
			switch {
			case !giveaway.IsActive:
				out.GiveawayClosed = true
				out.Voided = value == e.cfg.WinValue
			case value == e.cfg.WinValue:
				closed, err := tx.CloseGiveaway(ctx, giveaway.ID, current.UserID)
				if err != nil {
					return err
				}
				if closed {
					result = models.AttemptWin
					out.Won = true
				} else {
					out.Voided = true
					out.GiveawayClosed = true
				}
			}

			drawn := value
			resolved, err := tx.ResolveAttempt(ctx, attemptID, result, &drawn)
			if err != nil {
				return err
			}
			if !resolved {
				return fmt.Errorf("attempt #%d: %w", attemptID, models.ErrAlreadyProcessed)
			}

			if out.Attempt, err = tx.GetAttempt(ctx, attemptID); err != nil {
				return err
			}
			out.Giveaway, err = tx.GetGiveaway(ctx, giveaway.ID)
			return err
		})
	})
	if err != nil {
		return Outcome{}, err
	}

	e.record(out, value)
	return out, nil
}

func (e *Engine) record(out Outcome, value int) {
	fields := logrus.Fields{
		"attempt_id":  out.Attempt.ID,
		"giveaway_id": out.Giveaway.ID,
		"user_id":     out.Attempt.UserID,
		"value":       value,
	}
	switch {
	case out.Won:
		metrics.Draws.WithLabelValues("win").Inc()
		metrics.Giveaways.WithLabelValues("won").Inc()
		e.log.WithFields(fields).Info("Giveaway won")
	case out.Voided:
		metrics.Draws.WithLabelValues("void").Inc()
		e.log.WithFields(fields).Warn("Winning draw voided, giveaway already closed")
	case out.GiveawayClosed:
		metrics.Draws.WithLabelValues("closed").Inc()
	default:
		metrics.Draws.WithLabelValues("lose").Inc()
	}
}

func (e *Engine) Stats(ctx context.Context, giveawayID uint) (models.GiveawayStats, error) {
	return e.store.AttemptStats(ctx, giveawayID)
}

// History returns closed giveaways, most recently ended first.
func (e *Engine) History(ctx context.Context, limit int) ([]models.Giveaway, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.store.GiveawayHistory(ctx, limit)
}

func (e *Engine) UserAttemptCount(ctx context.Context, giveawayID uint, userID int64) (int64, error) {
	return e.store.CountUserAttempts(ctx, giveawayID, userID)
}

// ExpireStale resolves attempts pending longer than the attempt timeout as
// lost and returns them.
func (e *Engine) ExpireStale(ctx context.Context) ([]models.Attempt, error) {
	if e.cfg.AttemptTimeout <= 0 {
		return nil, nil
	}
	expired, err := e.store.ExpireAttempts(ctx, e.now().Add(-e.cfg.AttemptTimeout))
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		metrics.ExpiredAttempts.Add(float64(len(expired)))
		e.log.WithField("count", len(expired)).Info("Expired stale attempts")
	}
	return expired, nil
}
