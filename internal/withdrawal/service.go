// Package withdrawal manages the pending -> paid | rejected lifecycle of
// withdrawal requests. Creation reserves the amount from the balance, and a
// rejection refunds it exactly once.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"stars-bot/internal/guard"
	"stars-bot/internal/ledger"
	"stars-bot/internal/metrics"
	"stars-bot/internal/models"
	"stars-bot/internal/storage"
)

const DefaultListLimit = 10

type Config struct {
	MinReferrals int64
	// MinAmount is the smallest amount that can be withdrawn at once.
	MinAmount      int64
	AllowedAmounts []int64
	MaxPending     int64
}

type Decision string

const (
	DecisionPay    Decision = "paid"
	DecisionReject Decision = "rejected"
)

type Service struct {
	store  storage.Store
	ledger *ledger.Ledger
	guard  guard.Guard
	cfg    Config
	log    *logrus.Entry
}

func NewService(store storage.Store, l *ledger.Ledger, g guard.Guard, cfg Config, log *logrus.Entry) *Service {
	return &Service{
		store:  store,
		ledger: l,
		guard:  g,
		cfg:    cfg,
		log:    log.WithField("component", "withdrawal"),
	}
}

// AllowedAmounts lists the selectable amounts, skipping any below MinAmount.
func (s *Service) AllowedAmounts() []int64 {
	return slices.DeleteFunc(slices.Clone(s.cfg.AllowedAmounts), func(a int64) bool {
		return a < s.cfg.MinAmount
	})
}

func (s *Service) validAmount(amount int64) bool {
	if amount <= 0 || amount < s.cfg.MinAmount {
		return false
	}
	return len(s.cfg.AllowedAmounts) == 0 || slices.Contains(s.cfg.AllowedAmounts, amount)
}

// Create reserves amount and stores a pending request. Concurrent calls for
// the same user fail fast with ErrAlreadyInProgress.
func (s *Service) Create(ctx context.Context, userID, amount int64) (models.WithdrawalRequest, error) {
	if !s.validAmount(amount) {
		return models.WithdrawalRequest{}, fmt.Errorf("amount %d: %w", amount, models.ErrValidation)
	}

	var req models.WithdrawalRequest
	err := guard.Do(ctx, s.guard, guard.WithdrawKey(userID), func(ctx context.Context) error {
		return s.store.Transaction(ctx, func(tx storage.Store) error {
			user, err := tx.LockUser(ctx, userID)
			if err != nil {
				return err
			}
			if user.ReferralsCount < s.cfg.MinReferrals {
				return &models.ShortfallError{
					Err:  models.ErrInsufficientReferrals,
					Have: user.ReferralsCount,
					Need: s.cfg.MinReferrals,
				}
			}
			if user.Balance < amount {
				return &models.ShortfallError{Err: models.ErrInsufficientBalance, Have: user.Balance, Need: amount}
			}
			pending, err := tx.CountPendingWithdrawals(ctx, userID)
			if err != nil {
				return err
			}
			if s.cfg.MaxPending > 0 && pending >= s.cfg.MaxPending {
				return fmt.Errorf("%w: %d pending", models.ErrTooManyPending, pending)
			}

			ok, err := s.ledger.WithTx(tx).Reserve(ctx, userID, amount)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrInsufficientBalance
			}

			req = models.WithdrawalRequest{
				UserID: userID,
				Amount: amount,
				Status: models.WithdrawalPending,
			}
			return tx.CreateWithdrawal(ctx, &req)
		})
	})
	if err != nil {
		metrics.Withdrawals.WithLabelValues(outcomeLabel(err)).Inc()
		return models.WithdrawalRequest{}, err
	}

	metrics.Withdrawals.WithLabelValues("created").Inc()
	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"user_id":    userID,
		"amount":     amount,
	}).Info("Withdrawal request created")
	return req, nil
}

// Approve marks a pending request paid. The balance was already reserved at
// creation, so nothing else changes.
func (s *Service) Approve(ctx context.Context, id uint) (models.WithdrawalRequest, error) {
	return s.finish(ctx, id, models.WithdrawalPaid)
}

// Reject marks a pending request rejected and refunds its amount.
func (s *Service) Reject(ctx context.Context, id uint) (models.WithdrawalRequest, error) {
	return s.finish(ctx, id, models.WithdrawalRejected)
}

func (s *Service) Decide(ctx context.Context, id uint, d Decision) (models.WithdrawalRequest, error) {
	switch d {
	case DecisionPay:
		return s.Approve(ctx, id)
	case DecisionReject:
		return s.Reject(ctx, id)
	default:
		return models.WithdrawalRequest{}, fmt.Errorf("decision %q: %w", d, models.ErrValidation)
	}
}

func (s *Service) finish(ctx context.Context, id uint, to models.WithdrawalStatus) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	err := s.store.Transaction(ctx, func(tx storage.Store) error {
		current, err := tx.GetWithdrawal(ctx, id)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return fmt.Errorf("request #%d is %s: %w", id, current.Status, models.ErrAlreadyProcessed)
		}

		swapped, err := tx.SwapWithdrawalStatus(ctx, id, models.WithdrawalPending, to)
		if err != nil {
			return err
		}
		if !swapped {
			return fmt.Errorf("request #%d: %w", id, models.ErrAlreadyProcessed)
		}
		if to == models.WithdrawalRejected {
			if err := s.ledger.WithTx(tx).Refund(ctx, current.UserID, current.Amount); err != nil {
				return err
			}
		}

		current.Status = to
		req = current
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyProcessed) {
			metrics.Withdrawals.WithLabelValues("duplicate_decision").Inc()
		}
		return models.WithdrawalRequest{}, err
	}

	metrics.Withdrawals.WithLabelValues(string(to)).Inc()
	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"user_id":    req.UserID,
		"amount":     req.Amount,
		"status":     req.Status,
	}).Info("Withdrawal request finished")
	return req, nil
}

func (s *Service) Get(ctx context.Context, id uint) (models.WithdrawalRequest, error) {
	return s.store.GetWithdrawal(ctx, id)
}

// ListForUser returns the user's latest requests, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]models.WithdrawalRequest, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListWithdrawals(ctx, userID, limit)
}

// ListPending returns pending requests, oldest first.
func (s *Service) ListPending(ctx context.Context, limit int) ([]models.WithdrawalRequest, error) {
	return s.store.ListPendingWithdrawals(ctx, limit)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "invalid"
	case errors.Is(err, models.ErrInsufficientReferrals):
		return "insufficient_referrals"
	case errors.Is(err, models.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, models.ErrTooManyPending):
		return "too_many_pending"
	case errors.Is(err, models.ErrAlreadyInProgress):
		return "in_progress"
	default:
		return "error"
	}
}
