package storage

import (
	"context"
	"time"

	"stars-bot/internal/models"
)

// Store persists users, referral credits, withdrawal requests, giveaways and
// attempts. Conditional updates (Swap*, Close*, Resolve*) report whether a row
// actually changed so callers can detect lost races without extra reads.
type Store interface {
	// Transaction runs fn against a transactional view of the store. Any error
	// returned by fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateUserIfAbsent(ctx context.Context, user *models.User) (bool, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	// LockUser reads the user and, inside a transaction, holds a row lock
	// until commit.
	LockUser(ctx context.Context, id int64) (models.User, error)
	// AddReferral records the credit for invitedID and increments the
	// referrer's count and balance. It returns false when invitedID was
	// already credited and ErrNotFound when the referrer does not exist.
	AddReferral(ctx context.Context, referrerID, invitedID, amount int64) (bool, error)
	// AdjustBalance adds delta to the user's balance. With requireSufficient a
	// debit that would go below zero fails with ErrInsufficientBalance.
	AdjustBalance(ctx context.Context, userID, delta int64, requireSufficient bool) error
	TopReferrers(ctx context.Context, limit int) ([]models.User, error)
	ListUserIDs(ctx context.Context) ([]int64, error)

	CreateWithdrawal(ctx context.Context, req *models.WithdrawalRequest) error
	GetWithdrawal(ctx context.Context, id uint) (models.WithdrawalRequest, error)
	SwapWithdrawalStatus(ctx context.Context, id uint, from, to models.WithdrawalStatus) (bool, error)
	ListWithdrawals(ctx context.Context, userID int64, limit int) ([]models.WithdrawalRequest, error)
	ListPendingWithdrawals(ctx context.Context, limit int) ([]models.WithdrawalRequest, error)
	CountPendingWithdrawals(ctx context.Context, userID int64) (int64, error)

	// CreateGiveaway deactivates any active giveaway and stores g as the
	// single active one.
	CreateGiveaway(ctx context.Context, g *models.Giveaway) error
	GetGiveaway(ctx context.Context, id uint) (models.Giveaway, error)
	ActiveGiveaway(ctx context.Context) (models.Giveaway, error)
	// CloseGiveaway marks the giveaway won by winnerID if it is still active
	// and has no winner.
	CloseGiveaway(ctx context.Context, id uint, winnerID int64) (bool, error)
	StopGiveaway(ctx context.Context, id uint) (bool, error)
	GiveawayHistory(ctx context.Context, limit int) ([]models.Giveaway, error)

	CreateAttempt(ctx context.Context, a *models.Attempt) error
	GetAttempt(ctx context.Context, id uint) (models.Attempt, error)
	// ResolveAttempt moves a pending attempt to result.
	ResolveAttempt(ctx context.Context, id uint, result models.AttemptResult, drawValue *int) (bool, error)
	AttemptStats(ctx context.Context, giveawayID uint) (models.GiveawayStats, error)
	CountUserAttempts(ctx context.Context, giveawayID uint, userID int64) (int64, error)
	// ExpireAttempts resolves every attempt still pending and created before
	// the cutoff as lost, returning the attempts it changed.
	ExpireAttempts(ctx context.Context, before time.Time) ([]models.Attempt, error)

	AdminStats(ctx context.Context, dayStart time.Time) (models.AdminStats, error)
}
