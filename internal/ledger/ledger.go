// Package ledger owns user balances and referral credits.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stars-bot/internal/metrics"
	"stars-bot/internal/models"
	"stars-bot/internal/storage"
)

const DefaultTopLimit = 10

type Ledger struct {
	store  storage.Store
	reward int64
	log    *logrus.Entry
	now    func() time.Time
}

func New(store storage.Store, reward int64, log *logrus.Entry) *Ledger {
	return &Ledger{
		store:  store,
		reward: reward,
		log:    log.WithField("component", "ledger"),
		now:    time.Now,
	}
}

// WithTx returns a copy bound to tx so its writes join the caller's
// transaction.
func (l *Ledger) WithTx(tx storage.Store) *Ledger {
	c := *l
	c.store = tx
	return &c
}

type Registration struct {
	ID          int64
	Username    string
	DisplayName string
	ReferrerID  *int64
}

// RegisterUser creates the user on first contact. A valid referrer, distinct
// from the user, is credited the referral reward in the same transaction. It
// reports whether the user was newly created.
func (l *Ledger) RegisterUser(ctx context.Context, reg Registration) (bool, error) {
	if reg.ID <= 0 {
		return false, fmt.Errorf("user id %d: %w", reg.ID, models.ErrValidation)
	}
	referrer := reg.ReferrerID
	if referrer != nil && (*referrer == reg.ID || *referrer <= 0) {
		referrer = nil
	}

	var created, credited bool
	err := l.store.Transaction(ctx, func(tx storage.Store) error {
		if referrer != nil {
			if _, err := tx.GetUser(ctx, *referrer); err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					return err
				}
				l.log.WithFields(logrus.Fields{"user_id": reg.ID, "referrer_id": *referrer}).
					Warn("Referrer not found, registering without referral")
				referrer = nil
			}
		}

		user := models.User{
			ID:          reg.ID,
			Username:    reg.Username,
			DisplayName: reg.DisplayName,
			ReferrerID:  referrer,
			JoinedAt:    l.now().UTC(),
		}
		var err error
		created, err = tx.CreateUserIfAbsent(ctx, &user)
		if err != nil || !created || referrer == nil {
			return err
		}

		credited, err = l.WithTx(tx).CreditReferralReward(ctx, *referrer, reg.ID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("register user %d: %w", reg.ID, err)
	}

	if created {
		fields := logrus.Fields{"user_id": reg.ID}
		if referrer != nil {
			fields["referrer_id"] = *referrer
		}
		l.log.WithFields(fields).Info("User registered")
	}
	if credited {
		metrics.ReferralCredits.Inc()
	}
	return created, nil
}

// CreditReferralReward credits referrerID for inviting invitedID. It is
// idempotent per invited user and reports whether a credit happened.
func (l *Ledger) CreditReferralReward(ctx context.Context, referrerID, invitedID int64) (bool, error) {
	if referrerID == invitedID {
		return false, nil
	}
	credited, err := l.store.AddReferral(ctx, referrerID, invitedID, l.reward)
	if errors.Is(err, models.ErrNotFound) {
		l.log.WithFields(logrus.Fields{"referrer_id": referrerID, "invited_id": invitedID}).
			Warn("Referral credit skipped, referrer missing")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if credited {
		l.log.WithFields(logrus.Fields{
			"referrer_id": referrerID,
			"invited_id":  invitedID,
			"amount":      l.reward,
		}).Info("Referral reward credited")
	}
	return credited, nil
}

// Reserve debits amount if the balance covers it. It reports false, with no
// change, when the balance is short.
func (l *Ledger) Reserve(ctx context.Context, userID, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("reserve %d: %w", amount, models.ErrValidation)
	}
	err := l.store.AdjustBalance(ctx, userID, -amount, true)
	if errors.Is(err, models.ErrInsufficientBalance) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) Refund(ctx context.Context, userID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("refund %d: %w", amount, models.ErrValidation)
	}
	return l.store.AdjustBalance(ctx, userID, amount, false)
}

func (l *Ledger) Balance(ctx context.Context, userID int64) (int64, error) {
	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (l *Ledger) Profile(ctx context.Context, userID int64) (models.User, error) {
	return l.store.GetUser(ctx, userID)
}

// TopReferrers orders by referral count, then earliest join, then id.
func (l *Ledger) TopReferrers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return l.store.TopReferrers(ctx, limit)
}

func (l *Ledger) UserIDs(ctx context.Context) ([]int64, error) {
	return l.store.ListUserIDs(ctx)
}

// Overview collects the operator statistics; "today" starts at UTC midnight.
func (l *Ledger) Overview(ctx context.Context) (models.AdminStats, error) {
	dayStart := l.now().UTC().Truncate(24 * time.Hour)
	return l.store.AdminStats(ctx, dayStart)
}
